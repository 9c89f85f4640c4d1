package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// DefaultCompressionLevel is the zstd level used when none is given.
const DefaultCompressionLevel = zstd.DefaultCompression

// Reader decompresses the body of an envelope.
type Reader struct {
	header Header
	z      io.ReadCloser
}

// NewReader reads and validates the header at the current position of r
// and returns a reader for the decompressed content. The compressed stream
// is limited to the length the header declares.
func NewReader(r io.Reader) (*Reader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	h, err := ParseHeader(buf[:])
	if err != nil {
		return nil, err
	}
	return &Reader{
		header: h,
		z:      zstd.NewReader(io.LimitReader(r, int64(h.CompressedLength))),
	}, nil
}

// Header returns the envelope header.
func (r *Reader) Header() Header {
	return r.header
}

// Read reads decompressed data into p.
func (r *Reader) Read(p []byte) (int, error) {
	return r.z.Read(p)
}

// Close releases the decompressor.
func (r *Reader) Close() error {
	return r.z.Close()
}

// readContent decompresses the whole body and checks it against the
// header. Memory grows with the bytes actually produced, never with the
// declared length alone.
func (r *Reader) readContent() ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(r.header.Length)+1))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if err := r.header.checkContent(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadAll reads and verifies the entire content of an envelope.
func ReadAll(r io.Reader) ([]byte, error) {
	zr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return zr.readContent()
}

// IsCompressed reports whether rs starts with an envelope header. The
// position of rs is restored.
func IsCompressed(rs io.ReadSeeker) (bool, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, fmt.Errorf("get position: %w", err)
	}
	var magic [4]byte
	n, err := io.ReadFull(rs, magic[:])
	if _, serr := rs.Seek(pos, io.SeekStart); serr != nil {
		return false, fmt.Errorf("restore position: %w", serr)
	}
	if n < len(magic) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(magic[:], Magic[:]), nil
}

// Open returns the content of rs as a seekable buffer, decompressing it
// first when it is an envelope. The envelope header is returned too, or nil
// for plain input.
func Open(rs io.ReadSeeker) (*Buffer, *Header, error) {
	compressed, err := IsCompressed(rs)
	if err != nil {
		return nil, nil, err
	}
	if !compressed {
		data, err := io.ReadAll(rs)
		if err != nil {
			return nil, nil, fmt.Errorf("read: %w", err)
		}
		return NewBuffer(data), nil, nil
	}

	zr, err := NewReader(rs)
	if err != nil {
		return nil, nil, err
	}
	defer zr.Close()
	data, err := zr.readContent()
	if err != nil {
		return nil, nil, err
	}
	h := zr.Header()
	return NewBuffer(data), &h, nil
}
