package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// DDS header constants
const (
	DDS_MAGIC       = 0x20534444 // "DDS "
	DDS_HEADER_SIZE = 124

	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PITCH       = 0x8
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_MIPMAPCOUNT = 0x20000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000
	DDS_HEADER_FLAGS_DEPTH       = 0x800000

	DDS_SURFACE_FLAGS_COMPLEX = 0x8
	DDS_SURFACE_FLAGS_TEXTURE = 0x1000
	DDS_SURFACE_FLAGS_MIPMAP  = 0x400000

	DDS_CUBEMAP_ALLFACES = 0xFE00
	DDS_FLAGS_VOLUME     = 0x200000

	DDS_PIXELFORMAT_SIZE = 32
	DDS_FOURCC           = 0x4
	DDS_RGB              = 0x40
	DDS_ALPHAPIXELS      = 0x1

	DX10_FOURCC = 0x30315844 // "DX10"

	DX10_DIMENSION_TEXTURE2D = 3
	DX10_DIMENSION_TEXTURE3D = 4
	DX10_MISC_TEXTURECUBE    = 0x4
)

type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type ddsHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type ddsDX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// ErrBadDDS is returned by ReadDDS for headers that are inconsistent or
// describe more data than the file holds.
var ErrBadDDS = errors.New("invalid DDS file")

// tightRow is the unpadded byte length of one block row, the row stride DDS
// uses.
func tightRow(s *surface.Surface) int {
	return s.BlocksWide() * s.BytesPerElement()
}

// WriteDDS writes b as a DDS file with a DX10 extension header. Animations
// are written as 2D texture arrays with one element per frame.
func WriteDDS(w io.Writer, b Bitmap) error {
	if b.IsNull() {
		return fmt.Errorf("write dds: null %s", b.Kind())
	}
	dxgi := b.Format().Descriptor().DXGI
	if dxgi == pixfmt.DXGI_FORMAT_UNKNOWN {
		return fmt.Errorf("write dds: %s has no DXGI format: %w", b.Format(), surface.ErrUnsupported)
	}

	h := ddsHeader{
		Size:        DDS_HEADER_SIZE,
		Flags:       DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH | DDS_HEADER_FLAGS_PIXELFORMAT,
		Height:      uint32(b.Height()),
		Width:       uint32(b.Width()),
		MipMapCount: uint32(b.MipCount()),
		PixelFormat: ddsPixelFormat{
			Size:  DDS_PIXELFORMAT_SIZE,
			Flags: DDS_FOURCC,
		},
		Caps: DDS_SURFACE_FLAGS_TEXTURE,
	}
	binary.LittleEndian.PutUint32(h.PixelFormat.FourCC[:], DX10_FOURCC)

	if b.Format().IsCompressed() {
		h.Flags |= DDS_HEADER_FLAGS_LINEARSIZE
		h.PitchOrLinearSize = uint32(b.Format().SurfaceSize(b.Width(), b.Height()))
	} else {
		h.Flags |= DDS_HEADER_FLAGS_PITCH
		h.PitchOrLinearSize = uint32(b.Format().BlocksWide(b.Width()) * b.Format().BytesPerBlock())
	}
	if b.MipCount() > 1 {
		h.Flags |= DDS_HEADER_FLAGS_MIPMAPCOUNT
		h.Caps |= DDS_SURFACE_FLAGS_MIPMAP | DDS_SURFACE_FLAGS_COMPLEX
	}

	dx10 := ddsDX10Header{
		DXGIFormat:        dxgi,
		ResourceDimension: DX10_DIMENSION_TEXTURE2D,
		ArraySize:         1,
	}

	switch b.Kind() {
	case KindCubemap:
		h.Caps |= DDS_SURFACE_FLAGS_COMPLEX
		h.Caps2 = DDS_CUBEMAP_ALLFACES
		dx10.MiscFlag = DX10_MISC_TEXTURECUBE
	case KindVolume:
		h.Flags |= DDS_HEADER_FLAGS_DEPTH
		h.Depth = uint32(b.Depth())
		h.Caps |= DDS_SURFACE_FLAGS_COMPLEX
		h.Caps2 = DDS_FLAGS_VOLUME
		dx10.ResourceDimension = DX10_DIMENSION_TEXTURE3D
	case KindAnimated:
		dx10.ArraySize = uint32(b.Depth())
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(DDS_MAGIC)); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &dx10); err != nil {
		return fmt.Errorf("write DX10 header: %w", err)
	}

	return b.Visit(func(slot Slot, s *surface.Surface) error {
		n := tightRow(s)
		for y := range s.BlocksHigh() {
			if _, err := w.Write(s.Row(y)[:n]); err != nil {
				return fmt.Errorf("write %+v: %w", slot, err)
			}
		}
		return nil
	})
}

// ReadDDS reads a DDS file written with a DX10 header, a DXT1/DXT3/DXT5
// FourCC, or 32-bit RGBA masks into a freshly allocated container.
func ReadDDS(r io.Reader) (Bitmap, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != DDS_MAGIC {
		return nil, fmt.Errorf("invalid DDS magic: 0x%08x", magic)
	}

	var h ddsHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if h.Size != DDS_HEADER_SIZE {
		return nil, fmt.Errorf("invalid DDS header size %d", h.Size)
	}

	kind := KindTexture2D
	depth := 1
	var format pixfmt.Format

	switch {
	case h.PixelFormat.Flags&DDS_FOURCC != 0 && binary.LittleEndian.Uint32(h.PixelFormat.FourCC[:]) == DX10_FOURCC:
		var dx10 ddsDX10Header
		if err := binary.Read(r, binary.LittleEndian, &dx10); err != nil {
			return nil, fmt.Errorf("read DX10 header: %w", err)
		}
		f, ok := pixfmt.FromDXGI(dx10.DXGIFormat)
		if !ok {
			return nil, fmt.Errorf("unsupported DXGI format %d", dx10.DXGIFormat)
		}
		format = f
		switch {
		case dx10.ResourceDimension == DX10_DIMENSION_TEXTURE3D:
			kind, depth = KindVolume, int(max(1, h.Depth))
		case dx10.MiscFlag&DX10_MISC_TEXTURECUBE != 0:
			kind = KindCubemap
		case dx10.ArraySize > 1:
			kind, depth = KindAnimated, int(dx10.ArraySize)
		}

	case h.PixelFormat.Flags&DDS_FOURCC != 0:
		switch string(h.PixelFormat.FourCC[:]) {
		case "DXT1":
			format = pixfmt.DXT1
		case "DXT3":
			format = pixfmt.DXT3
		case "DXT5":
			format = pixfmt.DXT5
		default:
			return nil, fmt.Errorf("unsupported fourCC: %s", h.PixelFormat.FourCC[:])
		}

	case h.PixelFormat.Flags&DDS_RGB != 0 && h.PixelFormat.RGBBitCount == 32:
		switch h.PixelFormat.RBitMask {
		case 0x000000FF:
			format = pixfmt.RGBA8
		case 0x00FF0000:
			format = pixfmt.BGRA8
		default:
			return nil, fmt.Errorf("unsupported RGB masks r=0x%08x", h.PixelFormat.RBitMask)
		}

	default:
		return nil, fmt.Errorf("unsupported DDS pixel format flags 0x%x", h.PixelFormat.Flags)
	}

	if kind == KindTexture2D {
		switch {
		case h.Caps2&DDS_CUBEMAP_ALLFACES == DDS_CUBEMAP_ALLFACES:
			kind = KindCubemap
		case h.Caps2&DDS_FLAGS_VOLUME != 0:
			kind, depth = KindVolume, int(max(1, h.Depth))
		}
	}

	width, height := int(h.Width), int(h.Height)
	if width < 1 || height < 1 || depth < 1 ||
		width > pixfmt.MaxDimension || height > pixfmt.MaxDimension || depth > pixfmt.MaxDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%dx%d", ErrBadDDS, width, height, depth)
	}
	mips := int(max(1, h.MipMapCount))
	if mips > pixfmt.MipLevels(width, height) {
		return nil, fmt.Errorf("%w: %d mips for %dx%d", ErrBadDDS, mips, width, height)
	}
	if kind == KindAnimated && mips > 1 {
		return nil, fmt.Errorf("read %d-mip texture array: %w", mips, surface.ErrUnsupported)
	}

	// Read the pixel data before allocating so a lying header costs no more
	// memory than the bytes actually present.
	want := ddsDataSize(kind, format, width, height, depth, mips)
	data, err := io.ReadAll(io.LimitReader(r, want))
	if err != nil {
		return nil, fmt.Errorf("read pixel data: %w", err)
	}
	if int64(len(data)) < want {
		return nil, fmt.Errorf("%w: %d bytes of pixel data, want %d", ErrBadDDS, len(data), want)
	}

	var b Bitmap
	switch kind {
	case KindCubemap:
		b = NewCubemap(format, width, height, mips)
	case KindVolume:
		b = NewVolume(format, width, height, depth, mips)
	case KindAnimated:
		b = NewAnimated(format, width, height, depth)
	default:
		b = NewTexture2D(format, width, height, mips)
	}
	if b.IsNull() {
		return nil, fmt.Errorf("%w: cannot allocate %dx%dx%d", ErrBadDDS, width, height, depth)
	}

	_ = b.Visit(func(_ Slot, s *surface.Surface) error {
		n := tightRow(s)
		for y := range s.BlocksHigh() {
			data = data[copy(s.Row(y)[:n], data):]
		}
		return nil
	})
	return b, nil
}

// ddsDataSize is the byte length of the tightly packed surfaces that follow
// the headers.
func ddsDataSize(kind Kind, f pixfmt.Format, width, height, depth, mips int) int64 {
	var total int64
	for m := range mips {
		w, h := pixfmt.LevelDim(width, m), pixfmt.LevelDim(height, m)
		plane := int64(f.BlocksWide(w)*f.BytesPerBlock()) * int64(f.BlocksHigh(h))
		switch kind {
		case KindCubemap:
			plane *= 6
		case KindVolume:
			plane *= int64(pixfmt.LevelDim(depth, m))
		case KindAnimated:
			plane *= int64(depth)
		}
		total += plane
	}
	return total
}
