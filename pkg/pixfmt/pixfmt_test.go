package pixfmt

import (
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorTable(t *testing.T) {
	for f := Format(0); f < formatCount; f++ {
		d := f.Descriptor()
		assert.GreaterOrEqual(t, d.BlockWidth, 1, "%s block width", f)
		assert.GreaterOrEqual(t, d.BlockHeight, 1, "%s block height", f)
		assert.GreaterOrEqual(t, d.BlockBytes, 1, "%s block bytes", f)
		assert.GreaterOrEqual(t, d.RowAlignment, 1, "%s row alignment", f)
		assert.NotEmpty(t, d.Name)
	}

	t.Run("OutOfRange", func(t *testing.T) {
		f := Format(999)
		assert.False(t, f.Valid())
		assert.Equal(t, table[Unknown], f.Descriptor())
		assert.Equal(t, "unknown(0x3e7)", f.String())
	})

	t.Run("Compressed", func(t *testing.T) {
		assert.True(t, DXT1.IsCompressed())
		assert.True(t, DXT5.IsCompressed())
		assert.False(t, RGBA8.IsCompressed())
		assert.Equal(t, 8, DXT1.BytesPerBlock())
		assert.Equal(t, 16, DXT3.BytesPerBlock())
	})
}

func TestParse(t *testing.T) {
	for _, f := range Formats() {
		got, err := Parse(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := Parse(" RGBA8 ")
	require.NoError(t, err)
	assert.Equal(t, RGBA8, got)

	_, err = Parse("bc7")
	assert.Error(t, err)
}

func TestPitch(t *testing.T) {
	tests := []struct {
		format Format
		width  int
		pitch  int
	}{
		{RGBA8, 1, 4},
		{RGBA8, 3, 12},
		{RGB8, 1, 4},
		{RGB8, 3, 12},
		{RGB8, 5, 16},
		{L8, 5, 8},
		{LA8, 3, 8},
		{DXT1, 1, 8},
		{DXT1, 5, 16},
		{DXT5, 64, 256},
		{RGBA32F, 2, 32},
		{RGBA8, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.pitch, tt.format.Pitch(tt.width), "%s width %d", tt.format, tt.width)
	}
}

func TestSurfaceSizeLaw(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 4, 5, 7, 16, 17, 63, 64, 100}
	for _, f := range Formats() {
		d := f.Descriptor()
		for _, w := range sizes {
			for _, h := range sizes {
				pitch := f.Pitch(w)
				assert.Zero(t, pitch%d.RowAlignment, "%s %dx%d pitch alignment", f, w, h)
				want := 0
				if w > 0 && h > 0 {
					want = pitch * ((h + d.BlockHeight - 1) / d.BlockHeight)
				}
				assert.Equal(t, want, f.SurfaceSize(w, h), "%s %dx%d size", f, w, h)
			}
		}
	}
}

func TestCheckedSize(t *testing.T) {
	for _, f := range Formats() {
		for _, dims := range [][2]int{{0, 4}, {1, 1}, {17, 9}, {MaxDimension, MaxDimension}} {
			size, ok := f.CheckedSize(dims[0], dims[1])
			assert.True(t, ok, "%s %v", f, dims)
			assert.Equal(t, f.SurfaceSize(dims[0], dims[1]), size, "%s %v", f, dims)
		}
	}

	_, ok := RGBA32F.CheckedSize(math.MaxInt, 1)
	assert.False(t, ok)
	_, ok = DXT5.CheckedSize(math.MaxInt, math.MaxInt)
	assert.False(t, ok)
	_, ok = RGBA8.CheckedSize(1<<31, 1<<31)
	assert.False(t, ok)
	assert.Equal(t, math.MaxInt/4+1, DXT1.BlocksWide(math.MaxInt))
}

func TestLevelDim(t *testing.T) {
	for _, length := range []int{1, 2, 3, 17, 4096} {
		for _, m := range []int{0, 1, 5, 12} {
			assert.Equal(t, max(1, length>>m), LevelDim(length, m), "length %d mip %d", length, m)
		}
	}
	assert.Equal(t, 17, LevelDim(17, 0))
	assert.Equal(t, 1, LevelDim(4096, 12))
	assert.Equal(t, 2, LevelDim(4096, 11))
	assert.Equal(t, 1, LevelDim(4096, 200))
}

func TestMipLevels(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{0, 0, 1},
		{1, 1, 1},
		{2, 1, 2},
		{3, 3, 2},
		{64, 64, 7},
		{64, 16, 7},
		{1, 4096, 13},
		{100, 30, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MipLevels(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
}

func TestGPUAndDXGIMapping(t *testing.T) {
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, RGBA8.GPUFormat())
	assert.Equal(t, gputypes.TextureFormatBC3RGBAUnorm, DXT5.GPUFormat())
	assert.Equal(t, gputypes.TextureFormatUndefined, RGB8.GPUFormat())

	f, ok := FromDXGI(DXGI_FORMAT_BC1_UNORM)
	assert.True(t, ok)
	assert.Equal(t, DXT1, f)

	f, ok = FromDXGI(DXGI_FORMAT_R8G8B8A8_UNORM_SRGB)
	assert.True(t, ok)
	assert.Equal(t, RGBA8, f)

	_, ok = FromDXGI(9999)
	assert.False(t, ok)
}
