package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoTools/nitxtools/pkg/config"
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

func writeTestPNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestBuildEntry(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 6 {
		p := filepath.Join(dir, string(rune('a'+i))+".png")
		writeTestPNG(t, p, 8, 8, color.NRGBA{R: uint8(i * 40), A: 255})
		paths = append(paths, p)
	}
	writeTestPNG(t, filepath.Join(dir, "odd.png"), 4, 8, color.NRGBA{A: 255})

	t.Run("Texture2D", func(t *testing.T) {
		b, err := buildEntry(&config.Entry{Name: "t", Format: "bgra8"}, paths[:1])
		require.NoError(t, err)
		assert.Equal(t, texture.KindTexture2D, b.Kind())
		assert.Equal(t, pixfmt.BGRA8, b.Format())
		assert.Equal(t, 4, b.MipCount())
	})

	t.Run("Cubemap", func(t *testing.T) {
		b, err := buildEntry(&config.Entry{Name: "c", Kind: "cubemap", Mips: 2}, paths)
		require.NoError(t, err)
		c := b.(*texture.Cubemap)
		assert.Equal(t, 2, c.MipCount())
		assert.Equal(t, uint32(0xFF0000A0), c.Surface(1, 4).Read(0, 0))
	})

	t.Run("Volume", func(t *testing.T) {
		b, err := buildEntry(&config.Entry{Name: "v", Kind: "volume"}, paths[:4])
		require.NoError(t, err)
		assert.Equal(t, 4, b.Depth())
		assert.Equal(t, 4, b.MipCount())
	})

	t.Run("Animated", func(t *testing.T) {
		b, err := buildEntry(&config.Entry{Name: "a", Kind: "animated", FrameTimes: []uint32{10, 20}}, paths[:2])
		require.NoError(t, err)
		a := b.(*texture.Animated)
		assert.Equal(t, []uint32{10, 20}, a.FrameTimes())
	})

	t.Run("MismatchedSizes", func(t *testing.T) {
		_, err := buildEntry(&config.Entry{Name: "m", Kind: "animated"}, []string{paths[0], filepath.Join(dir, "odd.png")})
		assert.ErrorIs(t, err, texture.ErrShapeMismatch)
	})

	t.Run("MissingImage", func(t *testing.T) {
		_, err := buildEntry(&config.Entry{Name: "x"}, []string{filepath.Join(dir, "missing.png")})
		assert.Error(t, err)
	})
}

func TestEntryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "ui", "button.dds"), entryPath("out", "ui/button", ".dds"))
	assert.Equal(t, filepath.Join("out", "__etc_passwd.dds"), entryPath("out", "../etc/passwd", ".dds"))
	assert.Equal(t, filepath.Join("out", "_.dds"), entryPath("out", "", ".dds"))
}
