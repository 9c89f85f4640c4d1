package surface

import (
	"fmt"
	"slices"
)

// FlipVertical mirrors the surface top to bottom. Block-compressed surfaces
// swap whole block rows and reverse the scanlines stored inside each block.
func (s *Surface) FlipVertical() error {
	if s.IsNull() {
		return nil
	}

	out := make([]byte, len(s.buf))
	last := s.blocksHigh - 1
	for y := 0; y <= last; y++ {
		copy(out[(last-y)*s.pitch:(last-y+1)*s.pitch], s.Row(y))
	}

	if s.format.IsCompressed() {
		flip := blockFlipper(s.format)
		if flip == nil {
			return fmt.Errorf("flip %s: %w", s.format, ErrUnsupported)
		}
		rows := min(s.height, s.format.Descriptor().BlockHeight)
		n := s.BlocksWide()
		for y := 0; y <= last; y++ {
			row := out[y*s.pitch:]
			for x := range n {
				flip(row[x*s.bpe:(x+1)*s.bpe], rows)
			}
		}
	}

	s.buf = out
	return nil
}

// FlipHorizontal mirrors the surface left to right. Block-compressed
// surfaces are not supported and are returned unchanged.
func (s *Surface) FlipHorizontal() error {
	if s.IsNull() {
		return nil
	}
	if s.format.IsCompressed() {
		return fmt.Errorf("horizontal flip of %s: %w", s.format, ErrUnsupported)
	}

	out := slices.Clone(s.buf)
	rowBytes := s.width * s.bpe
	for y := range s.blocksHigh {
		src := s.buf[y*s.pitch : y*s.pitch+rowBytes]
		dst := out[y*s.pitch : y*s.pitch+rowBytes]
		for x := range s.width {
			copy(dst[(s.width-1-x)*s.bpe:(s.width-x)*s.bpe], src[x*s.bpe:(x+1)*s.bpe])
		}
	}

	s.buf = out
	return nil
}
