// Package texture provides the bitmap containers stored in NITX archives.
//
// There are four container kinds, each owning its surfaces and indexing them
// its own way:
//
//   - Texture2D: one surface per mip level.
//   - Cubemap: six faces, each a mip chain.
//   - Volume: per mip level, one surface per depth slice. The slice count
//     shrinks with the level like any other dimension.
//   - Animated: one surface per frame plus a display duration per frame.
//     Animations have no mip chain.
//
// All surfaces of a container share one pixel format, and level m of a
// dimension d is max(1, d>>m).
package texture

import (
	"errors"
	"fmt"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// Kind identifies a container variant. Values are persisted in archives.
type Kind uint32

const (
	KindInvalid   Kind = 0
	KindTexture2D Kind = 1
	KindCubemap   Kind = 2
	KindVolume    Kind = 3
	KindAnimated  Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTexture2D:
		return "texture2d"
	case KindCubemap:
		return "cubemap"
	case KindVolume:
		return "volume"
	case KindAnimated:
		return "animated"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k := KindTexture2D; k <= KindAnimated; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown texture kind %q", name)
}

var (
	// ErrShapeMismatch is returned when a surface does not match the format
	// and dimensions of the slot it is assigned to.
	ErrShapeMismatch = errors.New("surface shape does not match slot")

	// ErrNoSlot is returned for coordinates outside a container.
	ErrNoSlot = errors.New("no such surface slot")
)

// Slot addresses one surface within a container. Layer is the depth slice
// of a volume or the frame of an animation; Face is only used by cubemaps.
type Slot struct {
	Face  int
	Mip   int
	Layer int
}

// VisitFunc is called for each surface of a container.
type VisitFunc func(Slot, *surface.Surface) error

// Bitmap is the contract shared by every container kind.
type Bitmap interface {
	Kind() Kind
	Width() int
	Height() int
	// Depth is the slice count of a volume, the frame count of an
	// animation and 1 otherwise.
	Depth() int
	Format() pixfmt.Format
	MipCount() int
	IsNull() bool
	// MemorySize is the total byte footprint of all surfaces.
	MemorySize() int
	// Visit calls fn for every surface in archive order: face, then mip,
	// then slice or frame. It stops at the first error.
	Visit(fn VisitFunc) error
}

// shape holds the fields common to every container.
type shape struct {
	format pixfmt.Format
	width  int
	height int
	mips   int
	size   int
}

func (s *shape) Width() int            { return s.width }
func (s *shape) Height() int           { return s.height }
func (s *shape) Format() pixfmt.Format { return s.format }
func (s *shape) MipCount() int         { return s.mips }
func (s *shape) MemorySize() int       { return s.size }

// reset validates the requested shape. It returns false and zeroes the
// shape when the container degenerates to null.
func (s *shape) reset(format pixfmt.Format, width, height, mips int) bool {
	*s = shape{}
	if width <= 0 || height <= 0 || !format.Valid() {
		return false
	}
	s.format = format
	s.width = width
	s.height = height
	s.mips = ResolveMipCount(mips, width, height)
	return true
}

// newLevel allocates the surface for mip level m and adds it to the
// footprint.
func (s *shape) newLevel(m int) *surface.Surface {
	surf := surface.New(s.format, pixfmt.LevelDim(s.width, m), pixfmt.LevelDim(s.height, m))
	s.size += surf.Size()
	return surf
}

// ResolveMipCount clamps a requested mip count to the full chain length of a
// width x height image. Zero or too-large requests give the full chain.
func ResolveMipCount(requested, width, height int) int {
	total := pixfmt.MipLevels(width, height)
	if requested <= 0 || requested > total {
		return total
	}
	return requested
}

// SurfaceAt returns the surface at slot, or nil.
func SurfaceAt(b Bitmap, slot Slot) *surface.Surface {
	switch t := b.(type) {
	case *Texture2D:
		return t.Surface(slot.Mip)
	case *Cubemap:
		return t.Surface(slot.Mip, slot.Face)
	case *Volume:
		return t.Surface(slot.Mip, slot.Layer)
	case *Animated:
		if slot.Mip != 0 {
			return nil
		}
		return t.Frame(slot.Layer)
	}
	return nil
}

// Assign copies s into the slot of b. It fails with ErrNoSlot or
// ErrShapeMismatch and leaves b untouched.
func Assign(b Bitmap, slot Slot, s *surface.Surface) error {
	target := SurfaceAt(b, slot)
	if target == nil {
		return fmt.Errorf("slot %+v of %s: %w", slot, b.Kind(), ErrNoSlot)
	}
	if s == nil {
		return fmt.Errorf("slot %+v of %s: nil surface: %w", slot, b.Kind(), ErrShapeMismatch)
	}
	if !target.SameShape(s) {
		return fmt.Errorf("slot %+v wants %s %dx%d, got %s %dx%d: %w",
			slot, target.Format(), target.Width(), target.Height(),
			s.Format(), s.Width(), s.Height(), ErrShapeMismatch)
	}

	var ok bool
	switch t := b.(type) {
	case *Texture2D:
		ok = t.SetSurface(slot.Mip, s)
	case *Cubemap:
		ok = t.SetSurface(slot.Mip, slot.Face, s)
	case *Volume:
		ok = t.SetSurface(slot.Mip, slot.Layer, s)
	case *Animated:
		ok = t.SetFrame(slot.Layer, s)
	}
	if !ok {
		return fmt.Errorf("slot %+v of %s: %w", slot, b.Kind(), ErrShapeMismatch)
	}
	return nil
}

// Equal reports whether a and b have the same kind, shape and surface bytes.
// A nil bitmap only equals another nil bitmap.
func Equal(a, b Bitmap) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Format() != b.Format() ||
		a.Width() != b.Width() || a.Height() != b.Height() ||
		a.Depth() != b.Depth() || a.MipCount() != b.MipCount() ||
		a.IsNull() != b.IsNull() {
		return false
	}
	if fa, ok := a.(*Animated); ok {
		fb := b.(*Animated)
		if len(fa.times) != len(fb.times) {
			return false
		}
		for i := range fa.times {
			if fa.times[i] != fb.times[i] {
				return false
			}
		}
	}

	errDiffer := errors.New("differ")
	err := a.Visit(func(slot Slot, s *surface.Surface) error {
		if !s.Equal(SurfaceAt(b, slot)) {
			return errDiffer
		}
		return nil
	})
	return err == nil
}

// Clone deep-copies any container.
func Clone(b Bitmap) Bitmap {
	switch t := b.(type) {
	case *Texture2D:
		return t.Clone()
	case *Cubemap:
		return t.Clone()
	case *Volume:
		return t.Clone()
	case *Animated:
		return t.Clone()
	}
	return nil
}

func cloneSurfaces(in []*surface.Surface) []*surface.Surface {
	if in == nil {
		return nil
	}
	out := make([]*surface.Surface, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
