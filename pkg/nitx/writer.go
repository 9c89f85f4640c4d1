package nitx

import (
	"fmt"
	"io"

	"github.com/EchoTools/nitxtools/pkg/texture"
)

// DirEntry locates one entry written by a Writer.
type DirEntry struct {
	Name   string
	Offset int64
}

// Writer builds an archive: a file header followed by uniquely named
// entries.
type Writer struct {
	ws      io.WriteSeeker
	header  FileHeader
	entries []DirEntry
	names   map[string]struct{}
}

// NewWriter writes a multi-texture archive header to ws, which must be
// empty: entries are always appended at the end of the stream.
func NewWriter(ws io.WriteSeeker) (*Writer, error) {
	return newWriter(ws, NewFileHeader(TagArchive))
}

func newWriter(ws io.WriteSeeker, h FileHeader) (*Writer, error) {
	end, err := ws.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek to end: %w", err)
	}
	if end != 0 {
		return nil, fmt.Errorf("stream holds %d bytes: %w", end, ErrNotEmpty)
	}
	headerBytes, err := h.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}
	if _, err := ws.Write(headerBytes); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{
		ws:     ws,
		header: h,
		names:  make(map[string]struct{}),
	}, nil
}

// Add appends b under name and returns its offset. Names must be unique
// within the archive.
func (w *Writer) Add(name string, b texture.Bitmap) (int64, error) {
	if _, dup := w.names[name]; dup {
		return 0, fmt.Errorf("add %q: %w", name, ErrDuplicateName)
	}
	offset, err := AppendEntry(w.ws, b, name)
	if err != nil {
		return 0, err
	}
	w.names[name] = struct{}{}
	w.entries = append(w.entries, DirEntry{Name: name, Offset: offset})
	return offset, nil
}

// Entries returns the entries written so far, in order.
func (w *Writer) Entries() []DirEntry {
	return append([]DirEntry(nil), w.entries...)
}

// Header returns the file header that was written.
func (w *Writer) Header() FileHeader {
	return w.header
}
