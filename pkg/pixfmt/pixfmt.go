// Package pixfmt describes the pixel formats a surface can be stored in.
//
// Every format has an immutable descriptor giving the size of one storage
// block in pixels and bytes, and the byte alignment each row of blocks must
// start on. Uncompressed formats use 1x1 blocks. The DXT family packs 4x4
// pixel blocks into 8 or 16 bytes.
//
// The numeric value of a Format is persisted in NITX archives and must not
// change.
package pixfmt

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Format identifies a pixel format. The zero value is Unknown.
type Format uint32

const (
	Unknown  Format = 0
	A8       Format = 1  // 8-bit alpha
	L8       Format = 2  // 8-bit luminance
	LA8      Format = 3  // 8-bit luminance + 8-bit alpha
	RGB565   Format = 4  // packed 16-bit color
	RGBA4444 Format = 5  // packed 16-bit color with alpha
	RGB8     Format = 6  // 24-bit color
	BGR8     Format = 7  // 24-bit color, blue first
	RGBA8    Format = 8  // 32-bit color with alpha
	BGRA8    Format = 9  // 32-bit color with alpha, blue first
	RGBA16F  Format = 10 // half-float color
	RGBA32F  Format = 11 // float color
	DXT1     Format = 12 // BC1, 4x4 blocks of 8 bytes
	DXT3     Format = 13 // BC2, 4x4 blocks of 16 bytes, explicit alpha
	DXT5     Format = 14 // BC3, 4x4 blocks of 16 bytes, interpolated alpha

	formatCount = 15
)

// DXGI_FORMAT values used when exporting to DDS.
const (
	DXGI_FORMAT_UNKNOWN             = 0
	DXGI_FORMAT_R32G32B32A32_FLOAT  = 2
	DXGI_FORMAT_R16G16B16A16_FLOAT  = 10
	DXGI_FORMAT_R8G8B8A8_UNORM      = 28
	DXGI_FORMAT_R8G8_UNORM          = 49
	DXGI_FORMAT_R8_UNORM            = 61
	DXGI_FORMAT_A8_UNORM            = 65
	DXGI_FORMAT_BC1_UNORM           = 71
	DXGI_FORMAT_BC2_UNORM           = 74
	DXGI_FORMAT_BC3_UNORM           = 77
	DXGI_FORMAT_B5G6R5_UNORM        = 85
	DXGI_FORMAT_B8G8R8A8_UNORM      = 87
	DXGI_FORMAT_B4G4R4A4_UNORM      = 115
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB = 29
)

// Descriptor is the static layout metadata of one pixel format.
type Descriptor struct {
	Name         string
	BlockWidth   int  // pixels covered by one block horizontally
	BlockHeight  int  // pixels covered by one block vertically
	BlockBytes   int  // bytes per block
	RowAlignment int  // required byte alignment of each row start
	Compressed   bool // true for block-compressed formats

	GPU  gputypes.TextureFormat // TextureFormatUndefined when the GPU has no equivalent
	DXGI uint32                 // DXGI_FORMAT_UNKNOWN when DDS has no equivalent
}

// table is populated once and read-only afterwards.
var table = [formatCount]Descriptor{
	Unknown:  {Name: "unknown", BlockWidth: 1, BlockHeight: 1, BlockBytes: 1, RowAlignment: 1},
	A8:       {Name: "a8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 1, RowAlignment: 4, DXGI: DXGI_FORMAT_A8_UNORM, GPU: gputypes.TextureFormatR8Unorm},
	L8:       {Name: "l8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 1, RowAlignment: 4, DXGI: DXGI_FORMAT_R8_UNORM, GPU: gputypes.TextureFormatR8Unorm},
	LA8:      {Name: "la8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 2, RowAlignment: 4, DXGI: DXGI_FORMAT_R8G8_UNORM, GPU: gputypes.TextureFormatRG8Unorm},
	RGB565:   {Name: "rgb565", BlockWidth: 1, BlockHeight: 1, BlockBytes: 2, RowAlignment: 4, DXGI: DXGI_FORMAT_B5G6R5_UNORM},
	RGBA4444: {Name: "rgba4444", BlockWidth: 1, BlockHeight: 1, BlockBytes: 2, RowAlignment: 4, DXGI: DXGI_FORMAT_B4G4R4A4_UNORM},
	RGB8:     {Name: "rgb8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 3, RowAlignment: 4},
	BGR8:     {Name: "bgr8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 3, RowAlignment: 4},
	RGBA8:    {Name: "rgba8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 4, RowAlignment: 4, DXGI: DXGI_FORMAT_R8G8B8A8_UNORM, GPU: gputypes.TextureFormatRGBA8Unorm},
	BGRA8:    {Name: "bgra8", BlockWidth: 1, BlockHeight: 1, BlockBytes: 4, RowAlignment: 4, DXGI: DXGI_FORMAT_B8G8R8A8_UNORM, GPU: gputypes.TextureFormatBGRA8Unorm},
	RGBA16F:  {Name: "rgba16f", BlockWidth: 1, BlockHeight: 1, BlockBytes: 8, RowAlignment: 4, DXGI: DXGI_FORMAT_R16G16B16A16_FLOAT, GPU: gputypes.TextureFormatRGBA16Float},
	RGBA32F:  {Name: "rgba32f", BlockWidth: 1, BlockHeight: 1, BlockBytes: 16, RowAlignment: 4, DXGI: DXGI_FORMAT_R32G32B32A32_FLOAT, GPU: gputypes.TextureFormatRGBA32Float},
	DXT1:     {Name: "dxt1", BlockWidth: 4, BlockHeight: 4, BlockBytes: 8, RowAlignment: 1, Compressed: true, DXGI: DXGI_FORMAT_BC1_UNORM, GPU: gputypes.TextureFormatBC1RGBAUnorm},
	DXT3:     {Name: "dxt3", BlockWidth: 4, BlockHeight: 4, BlockBytes: 16, RowAlignment: 1, Compressed: true, DXGI: DXGI_FORMAT_BC2_UNORM, GPU: gputypes.TextureFormatBC2RGBAUnorm},
	DXT5:     {Name: "dxt5", BlockWidth: 4, BlockHeight: 4, BlockBytes: 16, RowAlignment: 1, Compressed: true, DXGI: DXGI_FORMAT_BC3_UNORM, GPU: gputypes.TextureFormatBC3RGBAUnorm},
}

// Formats returns every known format except Unknown, in tag order.
func Formats() []Format {
	out := make([]Format, 0, formatCount-1)
	for f := Format(1); f < formatCount; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f names a known format other than Unknown.
func (f Format) Valid() bool {
	return f > Unknown && f < formatCount
}

// Descriptor returns the layout metadata for f. Unrecognized values get the
// Unknown descriptor.
func (f Format) Descriptor() Descriptor {
	if f >= formatCount {
		return table[Unknown]
	}
	return table[f]
}

// IsCompressed reports whether f is a block-compressed format.
func (f Format) IsCompressed() bool {
	return f.Descriptor().Compressed
}

// BytesPerBlock returns the bytes per storage block (per pixel for
// uncompressed formats).
func (f Format) BytesPerBlock() int {
	return f.Descriptor().BlockBytes
}

// GPUFormat returns the matching GPU texture format, or
// TextureFormatUndefined.
func (f Format) GPUFormat() gputypes.TextureFormat {
	return f.Descriptor().GPU
}

// String returns the lower-case format name.
func (f Format) String() string {
	if f >= formatCount {
		return fmt.Sprintf("unknown(0x%x)", uint32(f))
	}
	return table[f].Name
}

// Parse returns the format with the given name, case-insensitively.
func Parse(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for f := Format(1); f < formatCount; f++ {
		if table[f].Name == n {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown pixel format %q", name)
}

// FromDXGI maps a DXGI_FORMAT value back to a format.
func FromDXGI(dxgi uint32) (Format, bool) {
	switch dxgi {
	case DXGI_FORMAT_R8G8B8A8_UNORM_SRGB:
		return RGBA8, true
	case DXGI_FORMAT_UNKNOWN:
		return Unknown, false
	}
	for f := Format(1); f < formatCount; f++ {
		if table[f].DXGI == dxgi {
			return f, true
		}
	}
	return Unknown, false
}
