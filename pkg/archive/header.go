// Package archive wraps whole NITX files in a zstd-compressed envelope.
//
// An envelope is a fixed 32-byte header followed by one zstd stream:
//
//	magic "NTXZ"
//	content tag [4]byte   tag of the wrapped file ("NITX", "NIAT")
//	content version u32
//	zstd level i32
//	length u64            uncompressed bytes
//	compressed length u64 bytes of the zstd stream
//
// All integers are little-endian. The content tag and version repeat the
// first 8 bytes of the wrapped file so a listing can identify it without
// decompressing, and Open can cross-check it after decompressing.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Magic identifies a compressed envelope.
var Magic = [4]byte{'N', 'T', 'X', 'Z'}

const (
	// HeaderSize is the encoded size of a Header.
	HeaderSize = 32

	// MaxLength is the largest uncompressed length a reader accepts.
	MaxLength = 1 << 32

	// contentHeaderSize is the length of the wrapped file's tag and version.
	contentHeaderSize = 8
)

var (
	// ErrBadHeader is returned for a missing or malformed envelope header.
	ErrBadHeader = errors.New("invalid envelope header")

	// ErrCorrupt is returned when the decompressed content disagrees with
	// the header.
	ErrCorrupt = errors.New("corrupt envelope content")
)

// Header is the fixed prefix of an envelope.
type Header struct {
	Content          [4]byte
	ContentVersion   uint32
	Level            int32
	Length           uint64
	CompressedLength uint64
}

// AppendBinary appends the encoded header to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, Magic[:]...)
	b = append(b, h.Content[:]...)
	b = binary.LittleEndian.AppendUint32(b, h.ContentVersion)
	b = binary.LittleEndian.AppendUint32(b, uint32(h.Level))
	b = binary.LittleEndian.AppendUint64(b, h.Length)
	b = binary.LittleEndian.AppendUint64(b, h.CompressedLength)
	return b, nil
}

// ParseHeader decodes and validates the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, fmt.Errorf("%w: need %d bytes, got %d", ErrBadHeader, HeaderSize, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return h, fmt.Errorf("%w: magic %q", ErrBadHeader, data[0:4])
	}
	h.Content = [4]byte(data[4:8])
	h.ContentVersion = binary.LittleEndian.Uint32(data[8:12])
	h.Level = int32(binary.LittleEndian.Uint32(data[12:16]))
	h.Length = binary.LittleEndian.Uint64(data[16:24])
	h.CompressedLength = binary.LittleEndian.Uint64(data[24:32])
	return h, h.Validate()
}

// Validate checks that the lengths are usable by a reader on this platform.
func (h Header) Validate() error {
	if h.Length == 0 || h.CompressedLength == 0 {
		return fmt.Errorf("%w: empty content (%d/%d bytes)", ErrBadHeader, h.Length, h.CompressedLength)
	}
	if h.Length > min(MaxLength, math.MaxInt) {
		return fmt.Errorf("%w: length %d exceeds %d", ErrBadHeader, h.Length, uint64(min(MaxLength, math.MaxInt)))
	}
	if h.CompressedLength > math.MaxInt64 {
		return fmt.Errorf("%w: compressed length %d", ErrBadHeader, h.CompressedLength)
	}
	return nil
}

// Ratio returns compressed bytes per uncompressed byte.
func (h Header) Ratio() float64 {
	if h.Length == 0 {
		return 0
	}
	return float64(h.CompressedLength) / float64(h.Length)
}

// checkContent verifies that data matches the recorded lengths and content
// header.
func (h Header) checkContent(data []byte) error {
	if uint64(len(data)) != h.Length {
		return fmt.Errorf("%w: %d bytes, header says %d", ErrCorrupt, len(data), h.Length)
	}
	if h.Content == ([4]byte{}) {
		return nil
	}
	if len(data) < contentHeaderSize ||
		[4]byte(data[0:4]) != h.Content ||
		binary.LittleEndian.Uint32(data[4:8]) != h.ContentVersion {
		return fmt.Errorf("%w: content does not start with %q version %d", ErrCorrupt, h.Content[:], h.ContentVersion)
	}
	return nil
}

// String describes the wrapped content for listings.
func (h Header) String() string {
	name := "raw"
	if h.Content != ([4]byte{}) {
		name = fmt.Sprintf("%s v%d", h.Content[:], h.ContentVersion)
	}
	return fmt.Sprintf("%s, zstd level %d, %d -> %d bytes (%.1f%%)",
		name, h.Level, h.Length, h.CompressedLength, 100*h.Ratio())
}
