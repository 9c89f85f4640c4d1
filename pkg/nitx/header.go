// Package nitx reads and writes NITX texture archives.
//
// An archive is a file header followed by a sequence of named entries. Each
// entry stores one texture container: its kind, pixel format, dimensions
// and mip count, then one (pitch, size, bytes) record per surface in the
// container's traversal order. Entries are addressed by the byte offset
// AppendEntry returns, so callers can build their own directories or use
// Reader to scan one.
//
// All integers are little-endian uint32.
package nitx

import (
	"encoding/binary"
	"fmt"
)

// File tags.
var (
	TagArchive   = [4]byte{'N', 'I', 'T', 'X'} // multi-texture archive
	TagAnimation = [4]byte{'N', 'I', 'A', 'T'} // single animated texture
)

// Current format versions per tag.
const (
	VersionArchive   uint32 = 2
	VersionAnimation uint32 = 1
)

// HeaderSize is the fixed binary size of a file header.
const HeaderSize = 8

// FileHeader starts every NITX file.
type FileHeader struct {
	Tag     [4]byte
	Version uint32
}

// NewFileHeader returns the header for tag at its current version.
func NewFileHeader(tag [4]byte) FileHeader {
	h := FileHeader{Tag: tag, Version: VersionArchive}
	if tag == TagAnimation {
		h.Version = VersionAnimation
	}
	return h
}

// Validate checks the tag and version.
func (h *FileHeader) Validate() error {
	switch h.Tag {
	case TagArchive:
		if h.Version != VersionArchive {
			return fmt.Errorf("%w: %s version %d, want %d", ErrBadHeader, h.Tag[:], h.Version, VersionArchive)
		}
	case TagAnimation:
		if h.Version != VersionAnimation {
			return fmt.Errorf("%w: %s version %d, want %d", ErrBadHeader, h.Tag[:], h.Version, VersionAnimation)
		}
	default:
		return fmt.Errorf("%w: unknown tag %q", ErrBadHeader, h.Tag[:])
	}
	return nil
}

// MarshalBinary encodes the header.
func (h *FileHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header into buf, which must hold HeaderSize bytes.
func (h *FileHeader) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Tag[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
}

// UnmarshalBinary decodes and validates the header.
func (h *FileHeader) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBadHeader, HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *FileHeader) DecodeFrom(buf []byte) {
	copy(h.Tag[:], buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
}
