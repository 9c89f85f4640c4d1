package texture

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// rgbaView wraps a 4-byte-per-pixel surface as an image without copying.
// Channel order is whatever the surface stores.
func rgbaView(s *surface.Surface) *image.RGBA {
	return &image.RGBA{
		Pix:    s.Bytes(),
		Stride: s.Pitch(),
		Rect:   image.Rect(0, 0, s.Width(), s.Height()),
	}
}

func swapRedBlue(s *surface.Surface) {
	for y := range s.Height() {
		row := s.Row(y)[:s.Width()*4]
		for x := 0; x < len(row); x += 4 {
			row[x], row[x+2] = row[x+2], row[x]
		}
	}
}

// FromImage converts img into an RGBA8 or BGRA8 texture. Level 0 holds the
// image; the remaining levels are downsampled with bilinear filtering.
func FromImage(img image.Image, format pixfmt.Format, mips int) (*Texture2D, error) {
	if format != pixfmt.RGBA8 && format != pixfmt.BGRA8 {
		return nil, fmt.Errorf("import image as %s: %w", format, surface.ErrUnsupported)
	}
	b := img.Bounds()
	t := NewTexture2D(format, b.Dx(), b.Dy(), mips)
	if t.IsNull() {
		return nil, fmt.Errorf("import image: empty bounds %v", b)
	}

	base := t.Surface(0)
	draw.Draw(rgbaView(base), rgbaView(base).Rect, img, b.Min, draw.Src)
	if err := GenerateMips(t, draw.BiLinear); err != nil {
		return nil, err
	}
	if format == pixfmt.BGRA8 {
		_ = t.Visit(func(_ Slot, s *surface.Surface) error {
			swapRedBlue(s)
			return nil
		})
	}
	return t, nil
}

// SurfaceImage copies an 8-bit surface into a standard image. DXT surfaces
// are decoded.
func SurfaceImage(s *surface.Surface) (image.Image, error) {
	if s.IsNull() {
		return nil, fmt.Errorf("convert null surface")
	}
	r := image.Rect(0, 0, s.Width(), s.Height())
	switch s.Format() {
	case pixfmt.RGBA8, pixfmt.BGRA8:
		img := image.NewNRGBA(r)
		for y := range s.Height() {
			copy(img.Pix[y*img.Stride:], s.Row(y)[:s.Width()*4])
		}
		if s.Format() == pixfmt.BGRA8 {
			for i := 0; i < len(img.Pix); i += 4 {
				img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
			}
		}
		return img, nil
	case pixfmt.L8, pixfmt.A8:
		img := image.NewGray(r)
		for y := range s.Height() {
			copy(img.Pix[y*img.Stride:], s.Row(y)[:s.Width()])
		}
		return img, nil
	case pixfmt.DXT1, pixfmt.DXT3, pixfmt.DXT5:
		return decodeCompressed(s), nil
	}
	return nil, fmt.Errorf("convert %s surface: %w", s.Format(), surface.ErrUnsupported)
}

// GenerateMips fills every level above 0 of a 4-byte-per-pixel container by
// scaling its level 0 surfaces. Volume slices at level m are scaled from
// slice i<<m of level 0. Animations have no mips and are left alone.
func GenerateMips(b Bitmap, scaler draw.Scaler) error {
	if b.IsNull() || b.MipCount() < 2 {
		return nil
	}
	if b.Format().IsCompressed() || b.Format().BytesPerBlock() != 4 {
		return fmt.Errorf("generate mips for %s: %w", b.Format(), surface.ErrUnsupported)
	}

	return b.Visit(func(slot Slot, s *surface.Surface) error {
		if slot.Mip == 0 {
			return nil
		}
		src := Slot{Face: slot.Face}
		if v, ok := b.(*Volume); ok {
			src.Layer = min(slot.Layer<<slot.Mip, v.Depth()-1)
		}
		from := SurfaceAt(b, src)
		if from == nil {
			return fmt.Errorf("generate mip %+v: %w", slot, ErrNoSlot)
		}
		sv := rgbaView(from)
		dv := rgbaView(s)
		scaler.Scale(dv, dv.Rect, sv, sv.Rect, draw.Src, nil)
		return nil
	})
}
