package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/EchoTools/nitxtools/pkg/surface"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

// entryPath maps an entry name to a path under dir. Names that would escape
// dir are flattened.
func entryPath(dir, name, ext string) string {
	p := filepath.FromSlash(name)
	if p == "" || !filepath.IsLocal(p) {
		p = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
		if p == "" {
			p = "_"
		}
	}
	return filepath.Join(dir, p+ext)
}

func runExtract() error {
	r, _, err := openArchive(archivePath)
	if err != nil {
		return err
	}

	fmt.Printf("Extracting %d entries...\n", len(r.Entries()))
	for _, e := range r.Entries() {
		b, err := r.LoadAt(e.Offset)
		if err != nil {
			return fmt.Errorf("load %q: %w", e.Name, err)
		}

		ddsPath := entryPath(outputPath, e.Name, ".dds")
		if err := os.MkdirAll(filepath.Dir(ddsPath), 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := writeDDSFile(ddsPath, b); err != nil {
			return fmt.Errorf("write %s: %w", ddsPath, err)
		}

		if writePNG {
			if err := writePNGs(entryPath(outputPath, e.Name, ""), b); err != nil {
				return fmt.Errorf("write %q PNG: %w", e.Name, err)
			}
		}
	}

	fmt.Printf("Extraction complete. Files written to %s\n", outputPath)
	return nil
}

func writeDDSFile(path string, b texture.Bitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := texture.WriteDDS(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writePNGs writes every level 0 surface of b as base[_suffix].png.
// Formats PNG cannot hold are skipped.
func writePNGs(base string, b texture.Bitmap) error {
	return b.Visit(func(slot texture.Slot, s *surface.Surface) error {
		if slot.Mip != 0 {
			return nil
		}
		img, err := texture.SurfaceImage(s)
		if err != nil {
			return nil
		}

		path := base + ".png"
		switch b.Kind() {
		case texture.KindCubemap:
			path = fmt.Sprintf("%s_face%d.png", base, slot.Face)
		case texture.KindVolume:
			path = fmt.Sprintf("%s_slice%d.png", base, slot.Layer)
		case texture.KindAnimated:
			path = fmt.Sprintf("%s_frame%d.png", base, slot.Layer)
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}
