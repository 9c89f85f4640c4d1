package texture

import (
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// Texture2D is a plain 2D texture with a mip chain.
type Texture2D struct {
	shape
	levels []*surface.Surface
}

// NewTexture2D allocates a zero-filled texture. mips of 0 requests the full
// chain.
func NewTexture2D(format pixfmt.Format, width, height, mips int) *Texture2D {
	t := &Texture2D{}
	t.Allocate(format, width, height, mips)
	return t
}

// Allocate replaces the contents with freshly allocated levels.
func (t *Texture2D) Allocate(format pixfmt.Format, width, height, mips int) {
	t.levels = nil
	if !t.reset(format, width, height, mips) {
		return
	}
	t.levels = make([]*surface.Surface, t.mips)
	for m := range t.levels {
		t.levels[m] = t.newLevel(m)
	}
}

func (t *Texture2D) Kind() Kind   { return KindTexture2D }
func (t *Texture2D) Depth() int   { return 1 }
func (t *Texture2D) IsNull() bool { return len(t.levels) == 0 }

// Surface returns mip level m, or nil.
func (t *Texture2D) Surface(m int) *surface.Surface {
	if m < 0 || m >= len(t.levels) {
		return nil
	}
	return t.levels[m]
}

// SetSurface replaces mip level m with a copy of s. It returns false and
// changes nothing unless s has exactly the level's format and dimensions.
func (t *Texture2D) SetSurface(m int, s *surface.Surface) bool {
	cur := t.Surface(m)
	if cur == nil || s == nil || !cur.SameShape(s) {
		return false
	}
	t.levels[m] = s.Clone()
	return true
}

func (t *Texture2D) Visit(fn VisitFunc) error {
	for m, s := range t.levels {
		if err := fn(Slot{Mip: m}, s); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *Texture2D) Clone() *Texture2D {
	return &Texture2D{shape: t.shape, levels: cloneSurfaces(t.levels)}
}
