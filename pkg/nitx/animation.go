package nitx

import (
	"fmt"
	"io"

	"github.com/EchoTools/nitxtools/pkg/texture"
)

// WriteAnimation writes a single-animation file: an animation header and
// one entry.
func WriteAnimation(ws io.WriteSeeker, a *texture.Animated, name string) error {
	if a == nil {
		return fmt.Errorf("write animation %q: %w", name, ErrNullBitmap)
	}
	w, err := newWriter(ws, NewFileHeader(TagAnimation))
	if err != nil {
		return err
	}
	_, err = w.Add(name, a)
	return err
}

// ReadAnimation reads a file written by WriteAnimation.
func ReadAnimation(rs io.ReadSeeker) (*texture.Animated, string, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("seek to start: %w", err)
	}
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(rs, buf[:]); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	var h FileHeader
	if err := h.UnmarshalBinary(buf[:]); err != nil {
		return nil, "", err
	}
	if h.Tag != TagAnimation {
		return nil, "", fmt.Errorf("%w: %q is not an animation file", ErrBadHeader, h.Tag[:])
	}

	info, err := ReadEntryInfo(rs, HeaderSize)
	if err != nil {
		return nil, "", err
	}
	if info.Kind != texture.KindAnimated {
		return nil, "", corrupt(HeaderSize, "animation file holds a %s", info.Kind)
	}
	b, err := LoadEntry(rs, HeaderSize)
	if err != nil {
		return nil, "", err
	}
	return b.(*texture.Animated), info.Name, nil
}
