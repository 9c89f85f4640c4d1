package surface

import "github.com/EchoTools/nitxtools/pkg/pixfmt"

// pixel returns the slice holding pixel (x, y), or nil when the surface is
// compressed, null, or the point is out of range.
func (s *Surface) pixel(x, y int) []byte {
	if s.IsNull() || s.format.IsCompressed() {
		return nil
	}
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return nil
	}
	off := y*s.pitch + x*s.bpe
	return s.buf[off : off+s.bpe]
}

// Read returns up to the first four bytes of pixel (x, y) as a
// little-endian value. It returns 0 for compressed formats and
// out-of-range points.
func (s *Surface) Read(x, y int) uint32 {
	p := s.pixel(x, y)
	var v uint32
	for i := 0; i < len(p) && i < 4; i++ {
		v |= uint32(p[i]) << (8 * i)
	}
	return v
}

// put stores the low n bytes of v into pixel (x, y) if the pixel is at least
// n bytes wide.
func (s *Surface) put(x, y, n int, v uint32) {
	p := s.pixel(x, y)
	if len(p) < n {
		return
	}
	for i := range n {
		p[i] = byte(v >> (8 * i))
	}
}

// Write8 stores one byte at pixel (x, y).
func (s *Surface) Write8(x, y int, v uint8) { s.put(x, y, 1, uint32(v)) }

// Write16 stores a little-endian 16-bit value at pixel (x, y).
func (s *Surface) Write16(x, y int, v uint16) { s.put(x, y, 2, uint32(v)) }

// Write24 stores the low 24 bits of v at pixel (x, y).
func (s *Surface) Write24(x, y int, v uint32) { s.put(x, y, 3, v) }

// Write32 stores a little-endian 32-bit value at pixel (x, y).
func (s *Surface) Write32(x, y int, v uint32) { s.put(x, y, 4, v) }

// WriteRGBA stores a color at pixel (x, y) of a 32-bit surface, in the
// channel order of the surface format. Other formats are left untouched.
func (s *Surface) WriteRGBA(x, y int, r, g, b, a uint8) {
	if s.bpe != 4 {
		return
	}
	p := s.pixel(x, y)
	if p == nil {
		return
	}
	if s.format == pixfmt.BGRA8 {
		r, b = b, r
	}
	p[0], p[1], p[2], p[3] = r, g, b, a
}
