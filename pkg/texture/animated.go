package texture

import (
	"slices"
	"time"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// Animated is a stack of equally sized frames with per-frame display times
// in milliseconds.
type Animated struct {
	shape
	frames []*surface.Surface
	times  []uint32
}

// NewAnimated allocates frames zero-filled frames. Frame times start empty
// and are added with AddFrameTime.
func NewAnimated(format pixfmt.Format, width, height, frames int) *Animated {
	a := &Animated{}
	a.Allocate(format, width, height, frames)
	return a
}

// Allocate replaces the frames and clears the frame times.
func (a *Animated) Allocate(format pixfmt.Format, width, height, frames int) {
	a.frames = nil
	a.times = nil
	if frames <= 0 || !a.reset(format, width, height, 1) {
		a.shape = shape{}
		return
	}
	a.mips = 1
	a.frames = make([]*surface.Surface, frames)
	for i := range a.frames {
		a.frames[i] = a.newLevel(0)
	}
}

func (a *Animated) Kind() Kind   { return KindAnimated }
func (a *Animated) Depth() int   { return len(a.frames) }
func (a *Animated) IsNull() bool { return len(a.frames) == 0 }

// Frame returns frame i, or nil.
func (a *Animated) Frame(i int) *surface.Surface {
	if i < 0 || i >= len(a.frames) {
		return nil
	}
	return a.frames[i]
}

// SetFrame replaces frame i with a copy of s, if the shapes match exactly.
func (a *Animated) SetFrame(i int, s *surface.Surface) bool {
	cur := a.Frame(i)
	if cur == nil || s == nil || !cur.SameShape(s) {
		return false
	}
	a.frames[i] = s.Clone()
	return true
}

// AddFrameTime appends the display duration of the next frame.
func (a *Animated) AddFrameTime(ms uint32) {
	a.times = append(a.times, ms)
}

// FrameTime returns the display duration of frame i. ok is false when i is
// outside the frame count or no time was recorded for it.
func (a *Animated) FrameTime(i int) (ms uint32, ok bool) {
	if i < 0 || i >= a.Depth() || i >= len(a.times) {
		return 0, false
	}
	return a.times[i], true
}

// FrameTimes returns a copy of the recorded frame times.
func (a *Animated) FrameTimes() []uint32 {
	return slices.Clone(a.times)
}

// Duration returns the length of one loop of the animation.
func (a *Animated) Duration() time.Duration {
	var total time.Duration
	for i := range a.Depth() {
		ms, _ := a.FrameTime(i)
		total += time.Duration(ms) * time.Millisecond
	}
	return total
}

// FrameAt returns the frame shown after elapsed time, looping. Animations
// without timing stay on frame 0.
func (a *Animated) FrameAt(elapsed time.Duration) int {
	loop := a.Duration()
	if loop <= 0 || elapsed < 0 {
		return 0
	}
	elapsed %= loop
	for i := range a.Depth() {
		ms, _ := a.FrameTime(i)
		d := time.Duration(ms) * time.Millisecond
		if elapsed < d {
			return i
		}
		elapsed -= d
	}
	return a.Depth() - 1
}

func (a *Animated) Visit(fn VisitFunc) error {
	for i, s := range a.frames {
		if err := fn(Slot{Layer: i}, s); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (a *Animated) Clone() *Animated {
	return &Animated{
		shape:  a.shape,
		frames: cloneSurfaces(a.frames),
		times:  slices.Clone(a.times),
	}
}
