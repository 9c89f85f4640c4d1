package texture

import (
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// Volume is a 3D texture stored as 2D slices per mip level.
type Volume struct {
	shape
	depth  int
	levels [][]*surface.Surface
}

// NewVolume allocates a zero-filled volume. The mip chain length follows the
// width and height; each level has LevelDim(depth, m) slices.
func NewVolume(format pixfmt.Format, width, height, depth, mips int) *Volume {
	v := &Volume{}
	v.Allocate(format, width, height, depth, mips)
	return v
}

// Allocate replaces the contents with freshly allocated slices.
func (v *Volume) Allocate(format pixfmt.Format, width, height, depth, mips int) {
	v.levels = nil
	v.depth = 0
	if depth <= 0 || !v.reset(format, width, height, mips) {
		v.shape = shape{}
		return
	}
	v.depth = depth
	v.levels = make([][]*surface.Surface, v.mips)
	for m := range v.levels {
		slices := make([]*surface.Surface, pixfmt.LevelDim(depth, m))
		for i := range slices {
			slices[i] = v.newLevel(m)
		}
		v.levels[m] = slices
	}
}

func (v *Volume) Kind() Kind   { return KindVolume }
func (v *Volume) Depth() int   { return v.depth }
func (v *Volume) IsNull() bool { return len(v.levels) == 0 }

// Slices returns the slice count at mip level m.
func (v *Volume) Slices(m int) int {
	if m < 0 || m >= len(v.levels) {
		return 0
	}
	return len(v.levels[m])
}

// Surface returns slice of mip level m, or nil.
func (v *Volume) Surface(m, slice int) *surface.Surface {
	if m < 0 || m >= len(v.levels) || slice < 0 || slice >= len(v.levels[m]) {
		return nil
	}
	return v.levels[m][slice]
}

// SetSurface replaces a slice with a copy of s, if the shapes match exactly.
func (v *Volume) SetSurface(m, slice int, s *surface.Surface) bool {
	cur := v.Surface(m, slice)
	if cur == nil || s == nil || !cur.SameShape(s) {
		return false
	}
	v.levels[m][slice] = s.Clone()
	return true
}

func (v *Volume) Visit(fn VisitFunc) error {
	for m, slices := range v.levels {
		for i, s := range slices {
			if err := fn(Slot{Mip: m, Layer: i}, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (v *Volume) Clone() *Volume {
	out := &Volume{shape: v.shape, depth: v.depth}
	if v.levels != nil {
		out.levels = make([][]*surface.Surface, len(v.levels))
		for m := range v.levels {
			out.levels[m] = cloneSurfaces(v.levels[m])
		}
	}
	return out
}
