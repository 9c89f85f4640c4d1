// Package surface implements a single 2D plane of pixels stored in one
// pixel format.
//
// A Surface owns its byte buffer exclusively. Rows of storage blocks start
// every Pitch bytes; the pitch is the block row length rounded up to the
// format's row alignment. Block-compressed surfaces are opaque: per-pixel
// access is a no-op on them and only whole-block operations apply.
package surface

import (
	"bytes"
	"errors"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
)

// ErrUnsupported is returned by operations that a surface's format does not
// support. The surface is left unchanged.
var ErrUnsupported = errors.New("operation not supported for pixel format")

// Surface is one plane of pixels. The zero value is the null surface.
type Surface struct {
	width      int
	height     int
	format     pixfmt.Format
	pitch      int
	bpe        int // bytes per element: one pixel, or one block when compressed
	blocksHigh int
	buf        []byte
}

// New allocates a zero-filled surface. A width or height <= 0, an unknown
// format, or a size that overflows int yields the null surface.
func New(format pixfmt.Format, width, height int) *Surface {
	s := &Surface{}
	s.Allocate(format, width, height)
	return s
}

// Allocate (re)sizes the surface. Allocating with the same format and
// dimensions the surface already has only zero-fills the existing buffer.
func (s *Surface) Allocate(format pixfmt.Format, width, height int) {
	width = max(0, width)
	height = max(0, height)
	if width == 0 || height == 0 || !format.Valid() {
		s.release()
		return
	}
	size, ok := format.CheckedSize(width, height)
	if !ok {
		s.release()
		return
	}

	if s.buf != nil && s.format == format && s.width == width && s.height == height {
		clear(s.buf)
		return
	}

	s.width = width
	s.height = height
	s.format = format
	s.bpe = format.BytesPerBlock()
	s.pitch = format.Pitch(width)
	s.blocksHigh = format.BlocksHigh(height)
	s.buf = make([]byte, size)
}

func (s *Surface) release() {
	*s = Surface{}
}

// IsNull reports whether s holds no pixels.
func (s *Surface) IsNull() bool {
	return s == nil || s.buf == nil
}

// Width returns the width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the height in pixels.
func (s *Surface) Height() int { return s.height }

// Format returns the pixel format, Unknown for the null surface.
func (s *Surface) Format() pixfmt.Format { return s.format }

// Pitch returns the byte distance between consecutive block rows.
func (s *Surface) Pitch() int { return s.pitch }

// BytesPerElement returns the bytes per pixel, or per block for compressed
// formats.
func (s *Surface) BytesPerElement() int { return s.bpe }

// BlocksWide returns the number of block columns.
func (s *Surface) BlocksWide() int { return s.format.BlocksWide(s.width) }

// BlocksHigh returns the number of block rows.
func (s *Surface) BlocksHigh() int { return s.blocksHigh }

// Size returns the buffer length: pitch times block rows.
func (s *Surface) Size() int {
	if s.IsNull() {
		return 0
	}
	return s.pitch * s.blocksHigh
}

// Bytes returns the raw buffer. The slice aliases the surface storage.
func (s *Surface) Bytes() []byte { return s.buf }

// Row returns block row y, including trailing alignment padding, or nil
// when y is out of range.
func (s *Surface) Row(y int) []byte {
	if y < 0 || y >= s.blocksHigh {
		return nil
	}
	return s.buf[y*s.pitch : (y+1)*s.pitch]
}

// SameShape reports whether o has the same format and dimensions as s.
func (s *Surface) SameShape(o *Surface) bool {
	if s == nil || o == nil {
		return s.IsNull() && o.IsNull()
	}
	return s.format == o.format && s.width == o.width && s.height == o.height
}

// Equal reports whether o has the same shape and byte content as s.
func (s *Surface) Equal(o *Surface) bool {
	if !s.SameShape(o) {
		return false
	}
	if s.IsNull() {
		return true
	}
	return bytes.Equal(s.buf, o.buf)
}

// Clone returns a deep copy of s.
func (s *Surface) Clone() *Surface {
	if s.IsNull() {
		return &Surface{}
	}
	c := *s
	c.buf = bytes.Clone(s.buf)
	return &c
}

// Clear zero-fills the buffer.
func (s *Surface) Clear() {
	if s.IsNull() {
		return
	}
	clear(s.buf)
}
