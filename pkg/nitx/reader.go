package nitx

import (
	"fmt"
	"io"

	"github.com/EchoTools/nitxtools/pkg/texture"
)

// Reader gives random access to the entries of an archive. NewReader scans
// the entry headers once; pixel data is only read by Load and LoadAt.
type Reader struct {
	rs      io.ReadSeeker
	header  FileHeader
	entries []*EntryInfo
	byName  map[string]*EntryInfo
}

// NewReader validates the file header of rs and builds the entry
// directory. Scanning stops at the first corrupt entry.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	r := &Reader{
		rs:     rs,
		byName: make(map[string]*EntryInfo),
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(rs, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	if err := r.header.UnmarshalBinary(buf[:]); err != nil {
		return nil, err
	}

	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("get size: %w", err)
	}

	for off := int64(HeaderSize); off < size; {
		info, err := ReadEntryInfo(rs, off)
		if err != nil {
			return nil, fmt.Errorf("scan entry %d: %w", len(r.entries), err)
		}
		if _, dup := r.byName[info.Name]; dup {
			return nil, fmt.Errorf("entry at %d: %q: %w", off, info.Name, ErrDuplicateName)
		}
		r.entries = append(r.entries, info)
		r.byName[info.Name] = info
		off = info.End()
	}

	Logger().Debug("scanned archive",
		"tag", string(r.header.Tag[:]),
		"version", r.header.Version,
		"entries", len(r.entries))
	return r, nil
}

// Header returns the file header.
func (r *Reader) Header() FileHeader {
	return r.header
}

// Entries returns the entry descriptions in file order.
func (r *Reader) Entries() []*EntryInfo {
	return append([]*EntryInfo(nil), r.entries...)
}

// Info returns the description of the named entry.
func (r *Reader) Info(name string) (*EntryInfo, error) {
	info, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return info, nil
}

// Load reads the named entry.
func (r *Reader) Load(name string) (texture.Bitmap, error) {
	info, err := r.Info(name)
	if err != nil {
		return nil, err
	}
	return LoadEntry(r.rs, info.Offset)
}

// LoadAt reads the entry starting at offset.
func (r *Reader) LoadAt(offset int64) (texture.Bitmap, error) {
	return LoadEntry(r.rs, offset)
}
