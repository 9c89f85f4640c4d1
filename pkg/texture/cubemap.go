package texture

import (
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// Cube faces, in storage order.
const (
	FacePositiveX = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ

	FaceCount = 6
)

// Cubemap holds six faces, each with its own mip chain.
type Cubemap struct {
	shape
	faces [FaceCount][]*surface.Surface
}

// NewCubemap allocates a zero-filled cubemap with width x height faces.
func NewCubemap(format pixfmt.Format, width, height, mips int) *Cubemap {
	c := &Cubemap{}
	c.Allocate(format, width, height, mips)
	return c
}

// Allocate replaces the contents with freshly allocated faces.
func (c *Cubemap) Allocate(format pixfmt.Format, width, height, mips int) {
	c.faces = [FaceCount][]*surface.Surface{}
	if !c.reset(format, width, height, mips) {
		return
	}
	for f := range c.faces {
		c.faces[f] = make([]*surface.Surface, c.mips)
		for m := range c.faces[f] {
			c.faces[f][m] = c.newLevel(m)
		}
	}
}

func (c *Cubemap) Kind() Kind   { return KindCubemap }
func (c *Cubemap) Depth() int   { return 1 }
func (c *Cubemap) IsNull() bool { return len(c.faces[0]) == 0 }

// Surface returns mip level m of face, or nil.
func (c *Cubemap) Surface(m, face int) *surface.Surface {
	if face < 0 || face >= FaceCount || m < 0 || m >= len(c.faces[face]) {
		return nil
	}
	return c.faces[face][m]
}

// SetSurface replaces mip level m of face with a copy of s, if the shapes
// match exactly.
func (c *Cubemap) SetSurface(m, face int, s *surface.Surface) bool {
	cur := c.Surface(m, face)
	if cur == nil || s == nil || !cur.SameShape(s) {
		return false
	}
	c.faces[face][m] = s.Clone()
	return true
}

func (c *Cubemap) Visit(fn VisitFunc) error {
	for f := range c.faces {
		for m, s := range c.faces[f] {
			if err := fn(Slot{Face: f, Mip: m}, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Cubemap) Clone() *Cubemap {
	out := &Cubemap{shape: c.shape}
	for f := range c.faces {
		out.faces[f] = cloneSurfaces(c.faces[f])
	}
	return out
}
