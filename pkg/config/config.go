// Package config loads the TOML build descriptions used by nitxtool.
//
// A build description names the output archive and lists its entries:
//
//	output = "ui.nitx"
//	compress = true
//	level = 3
//
//	[[entry]]
//	name = "button"
//	kind = "texture2d"
//	format = "rgba8"
//	images = ["button.png"]
//
// Image paths are relative to the directory holding the description.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid build description")

// Build is a whole build description.
type Build struct {
	Output   string  `toml:"output"`
	Compress bool    `toml:"compress"`
	Level    int     `toml:"level"`
	Entries  []Entry `toml:"entry"`

	dir string
}

// Entry describes one texture to build.
type Entry struct {
	Name       string   `toml:"name"`
	Kind       string   `toml:"kind"`
	Format     string   `toml:"format"`
	Mips       int      `toml:"mips"`
	Images     []string `toml:"images"`
	FrameTimes []uint32 `toml:"frame_times"`
}

// Load reads and validates the description at path. Unknown keys are
// rejected.
func Load(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	b, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a description from TOML text. Relative paths are resolved
// against dir.
func Parse(data []byte, dir string) (*Build, error) {
	var b Build
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("decode at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	b.dir = dir
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the description and every entry.
func (b *Build) Validate() error {
	if b.Output == "" {
		return fmt.Errorf("%w: output is required", ErrInvalid)
	}
	if b.Level < 0 || b.Level > 22 {
		return fmt.Errorf("%w: zstd level %d out of range 0-22", ErrInvalid, b.Level)
	}
	if len(b.Entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalid)
	}

	seen := make(map[string]bool, len(b.Entries))
	for i := range b.Entries {
		e := &b.Entries[i]
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate entry name %q", ErrInvalid, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Validate checks that the entry names a kind and format and has the image
// count its kind needs.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	kind, err := e.TextureKind()
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalid, e.Name, err)
	}
	format, err := e.PixelFormat()
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalid, e.Name, err)
	}
	if format != pixfmt.RGBA8 && format != pixfmt.BGRA8 {
		return fmt.Errorf("%w: %q: images can only be imported as rgba8 or bgra8, not %s", ErrInvalid, e.Name, format)
	}
	if e.Mips < 0 {
		return fmt.Errorf("%w: %q: negative mip count", ErrInvalid, e.Name)
	}

	n := len(e.Images)
	switch kind {
	case texture.KindTexture2D:
		if n != 1 {
			return fmt.Errorf("%w: %q: texture2d needs 1 image, got %d", ErrInvalid, e.Name, n)
		}
	case texture.KindCubemap:
		if n != texture.FaceCount {
			return fmt.Errorf("%w: %q: cubemap needs %d images, got %d", ErrInvalid, e.Name, texture.FaceCount, n)
		}
	case texture.KindVolume, texture.KindAnimated:
		if n == 0 {
			return fmt.Errorf("%w: %q: %s needs at least 1 image", ErrInvalid, e.Name, kind)
		}
	}

	if len(e.FrameTimes) > 0 {
		if kind != texture.KindAnimated {
			return fmt.Errorf("%w: %q: frame_times only apply to animated entries", ErrInvalid, e.Name)
		}
		if len(e.FrameTimes) != n {
			return fmt.Errorf("%w: %q: %d frame times for %d frames", ErrInvalid, e.Name, len(e.FrameTimes), n)
		}
	}
	return nil
}

// TextureKind returns the parsed kind. An empty kind means texture2d.
func (e *Entry) TextureKind() (texture.Kind, error) {
	if e.Kind == "" {
		return texture.KindTexture2D, nil
	}
	return texture.ParseKind(e.Kind)
}

// PixelFormat returns the parsed format. An empty format means rgba8.
func (e *Entry) PixelFormat() (pixfmt.Format, error) {
	if e.Format == "" {
		return pixfmt.RGBA8, nil
	}
	return pixfmt.Parse(e.Format)
}

// ImagePaths returns the entry's image paths resolved against the
// description's directory.
func (b *Build) ImagePaths(e *Entry) []string {
	out := make([]string, len(e.Images))
	for i, p := range e.Images {
		if filepath.IsAbs(p) || b.dir == "" {
			out[i] = p
		} else {
			out[i] = filepath.Join(b.dir, p)
		}
	}
	return out
}

// OutputPath returns the output path resolved against the description's
// directory.
func (b *Build) OutputPath() string {
	if filepath.IsAbs(b.Output) || b.dir == "" {
		return b.Output
	}
	return filepath.Join(b.dir, b.Output)
}
