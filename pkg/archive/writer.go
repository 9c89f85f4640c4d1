package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// Writer compresses everything written to it into an envelope on dst. The
// header is written as a placeholder and completed by Close.
type Writer struct {
	dst    io.WriteSeeker
	start  int64
	z      *zstd.Writer
	header Header
	lead   []byte // first bytes of the content, for the content tag
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.header.Level = int32(level)
	}
}

// NewWriter starts an envelope at the current position of dst.
func NewWriter(dst io.WriteSeeker, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:    dst,
		header: Header{Level: DefaultCompressionLevel},
		lead:   make([]byte, 0, contentHeaderSize),
	}
	for _, opt := range opts {
		opt(w)
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	w.start = start

	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	w.z = zstd.NewWriterLevel(dst, int(w.header.Level))
	return w, nil
}

func (w *Writer) writeHeader() error {
	buf, err := w.header.AppendBinary(make([]byte, 0, HeaderSize))
	if err != nil {
		return err
	}
	if _, err := w.dst.Write(buf); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Write compresses p.
func (w *Writer) Write(p []byte) (int, error) {
	if n := min(len(p), cap(w.lead)-len(w.lead)); n > 0 {
		w.lead = append(w.lead, p[:n]...)
	}
	n, err := w.z.Write(p)
	w.header.Length += uint64(n)
	return n, err
}

// Close flushes the compressor and rewrites the header with the final
// lengths and content tag. dst is left positioned after the envelope.
func (w *Writer) Close() error {
	if err := w.z.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}
	w.header.CompressedLength = uint64(end - w.start - HeaderSize)
	if len(w.lead) == contentHeaderSize && isTag(w.lead[0:4]) {
		w.header.Content = [4]byte(w.lead[0:4])
		w.header.ContentVersion = binary.LittleEndian.Uint32(w.lead[4:8])
	}

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return fmt.Errorf("seek to header: %w", err)
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	if _, err := w.dst.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	return nil
}

// isTag reports whether b looks like a file tag: upper-case letters only.
func isTag(b []byte) bool {
	for _, c := range b {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Header returns the envelope header. It is complete after Close.
func (w *Writer) Header() Header {
	return w.header
}

// Encode compresses data into an envelope on dst.
func Encode(dst io.WriteSeeker, data []byte, opts ...WriterOption) error {
	w, err := NewWriter(dst, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	return w.Close()
}
