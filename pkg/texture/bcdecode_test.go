package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// Indices 0,1,2,3 across every row.
var rampIndices = []byte{0xE4, 0xE4, 0xE4, 0xE4}

func decodeSurface(t *testing.T, f pixfmt.Format, w, h int, blocks ...[]byte) *image.NRGBA {
	t.Helper()
	s := surface.New(f, w, h)
	var data []byte
	for _, b := range blocks {
		data = append(data, b...)
	}
	require.Equal(t, s.Size(), len(data))
	copy(s.Bytes(), data)

	img, err := SurfaceImage(s)
	require.NoError(t, err)
	return img.(*image.NRGBA)
}

func TestExpand565(t *testing.T) {
	assert.Equal(t, [3]int{255, 255, 255}, expand565(0xFFFF))
	assert.Equal(t, [3]int{255, 0, 0}, expand565(0xF800))
	assert.Equal(t, [3]int{0, 255, 0}, expand565(0x07E0))
	assert.Equal(t, [3]int{0, 0, 0}, expand565(0))
}

func TestAlphaPalette(t *testing.T) {
	assert.Equal(t, [8]uint8{255, 0, 218, 182, 145, 109, 72, 36}, alphaPalette(255, 0))
	assert.Equal(t, [8]uint8{0, 255, 51, 102, 153, 204, 0, 255}, alphaPalette(0, 255))
}

func TestDecodeDXT1(t *testing.T) {
	t.Run("FourColor", func(t *testing.T) {
		block := append([]byte{0x00, 0xF8, 0x1F, 0x00}, rampIndices...)
		img := decodeSurface(t, pixfmt.DXT1, 4, 4, block)
		for y := range 4 {
			assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(0, y))
			assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(1, y))
			assert.Equal(t, color.NRGBA{170, 0, 85, 255}, img.NRGBAAt(2, y))
			assert.Equal(t, color.NRGBA{85, 0, 170, 255}, img.NRGBAAt(3, y))
		}
	})

	t.Run("PunchThrough", func(t *testing.T) {
		block := append([]byte{0x1F, 0x00, 0x00, 0xF8}, rampIndices...)
		img := decodeSurface(t, pixfmt.DXT1, 4, 4, block)
		assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(0, 0))
		assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(1, 0))
		assert.Equal(t, color.NRGBA{127, 0, 127, 255}, img.NRGBAAt(2, 0))
		assert.Equal(t, color.NRGBA{}, img.NRGBAAt(3, 0))
	})

	t.Run("PartialBlocks", func(t *testing.T) {
		white := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}
		black := []byte{0, 0, 0, 0, 0, 0, 0, 0}
		img := decodeSurface(t, pixfmt.DXT1, 6, 2, white, black)
		assert.Equal(t, image.Rect(0, 0, 6, 2), img.Bounds())
		assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(3, 1))
		assert.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(5, 1))
	})
}

func TestDecodeDXT3(t *testing.T) {
	alpha := []byte{0x8F, 0x8F, 0x8F, 0x8F, 0x8F, 0x8F, 0x8F, 0x8F}
	// c0 < c1 still decodes as four colors.
	colors := append([]byte{0x1F, 0x00, 0x00, 0xF8}, rampIndices...)
	img := decodeSurface(t, pixfmt.DXT3, 4, 4, append(alpha, colors...))

	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 0x88}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{85, 0, 170, 255}, img.NRGBAAt(2, 2))
	assert.Equal(t, color.NRGBA{170, 0, 85, 0x88}, img.NRGBAAt(3, 3))
}

func TestDecodeDXT5(t *testing.T) {
	// Texels 0..3 use alpha indices 0, 1, 2, 7.
	alpha := []byte{255, 0, 0x88, 0x0E, 0, 0, 0, 0}
	colors := []byte{0x00, 0xF8, 0x1F, 0x00, 0, 0, 0, 0}
	img := decodeSurface(t, pixfmt.DXT5, 4, 4, append(alpha, colors...))

	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 0}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 218}, img.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 36}, img.NRGBAAt(3, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(3, 3))
}
