package nitx

import "errors"

var (
	// ErrCorruptEntry is returned when an entry cannot be decoded: a short
	// read, an unknown tag, an impossible shape, or a payload whose length
	// disagrees with the declared one.
	ErrCorruptEntry = errors.New("corrupt archive entry")

	// ErrBadHeader is returned when a file does not start with a known
	// tag and version.
	ErrBadHeader = errors.New("invalid archive header")

	// ErrNotFound is returned when an archive has no entry with the
	// requested name.
	ErrNotFound = errors.New("entry not found")

	// ErrDuplicateName is returned when an entry name is reused within one
	// archive.
	ErrDuplicateName = errors.New("duplicate entry name")

	// ErrNullBitmap is returned when appending a container with no
	// surfaces.
	ErrNullBitmap = errors.New("cannot store a null bitmap")

	// ErrNotEmpty is returned when a writer is handed a stream that
	// already holds data.
	ErrNotEmpty = errors.New("output stream is not empty")
)
