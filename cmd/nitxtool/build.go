package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/EchoTools/nitxtools/pkg/archive"
	"github.com/EchoTools/nitxtools/pkg/config"
	"github.com/EchoTools/nitxtools/pkg/nitx"
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

func runBuild() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	out := cfg.OutputPath()
	if outputPath != "" {
		out = outputPath
	}

	fmt.Printf("Building %d entries...\n", len(cfg.Entries))
	buf := archive.NewBuffer(nil)
	w, err := nitx.NewWriter(buf)
	if err != nil {
		return err
	}

	for i := range cfg.Entries {
		e := &cfg.Entries[i]
		b, err := buildEntry(e, cfg.ImagePaths(e))
		if err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
		if _, err := w.Add(e.Name, b); err != nil {
			return err
		}
		fmt.Printf("  %-24s %-9s %-7s %dx%dx%d, %d mips\n",
			e.Name, b.Kind(), b.Format(), b.Width(), b.Height(), b.Depth(), b.MipCount())
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if cfg.Compress {
		lvl := cfg.Level
		if lvl == 0 {
			lvl = archive.DefaultCompressionLevel
		}
		if err := archive.Encode(f, buf.Bytes(), archive.WithCompressionLevel(lvl)); err != nil {
			return fmt.Errorf("compress: %w", err)
		}
	} else if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("Build complete. Output written to %s\n", out)
	return f.Close()
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// decodeAll imports every image as a single-level texture and checks that
// they share one size.
func decodeAll(paths []string, format pixfmt.Format) ([]*texture.Texture2D, error) {
	out := make([]*texture.Texture2D, len(paths))
	for i, p := range paths {
		img, err := decodeImage(p)
		if err != nil {
			return nil, err
		}
		t, err := texture.FromImage(img, format, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if i > 0 && (t.Width() != out[0].Width() || t.Height() != out[0].Height()) {
			return nil, fmt.Errorf("%s is %dx%d, want %dx%d: %w",
				p, t.Width(), t.Height(), out[0].Width(), out[0].Height(), texture.ErrShapeMismatch)
		}
		out[i] = t
	}
	return out, nil
}

// buildEntry decodes the images of e and assembles them into a container of
// the requested kind.
func buildEntry(e *config.Entry, paths []string) (texture.Bitmap, error) {
	kind, err := e.TextureKind()
	if err != nil {
		return nil, err
	}
	format, err := e.PixelFormat()
	if err != nil {
		return nil, err
	}

	if kind == texture.KindTexture2D {
		img, err := decodeImage(paths[0])
		if err != nil {
			return nil, err
		}
		return texture.FromImage(img, format, e.Mips)
	}

	layers, err := decodeAll(paths, format)
	if err != nil {
		return nil, err
	}
	w, h := layers[0].Width(), layers[0].Height()

	var b texture.Bitmap
	slot := func(i int) texture.Slot { return texture.Slot{Layer: i} }
	switch kind {
	case texture.KindCubemap:
		b = texture.NewCubemap(format, w, h, e.Mips)
		slot = func(i int) texture.Slot { return texture.Slot{Face: i} }
	case texture.KindVolume:
		b = texture.NewVolume(format, w, h, len(layers), e.Mips)
	case texture.KindAnimated:
		a := texture.NewAnimated(format, w, h, len(layers))
		for _, ms := range e.FrameTimes {
			a.AddFrameTime(ms)
		}
		b = a
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}

	for i, l := range layers {
		if err := texture.Assign(b, slot(i), l.Surface(0)); err != nil {
			return nil, err
		}
	}
	if err := texture.GenerateMips(b, draw.BiLinear); err != nil {
		return nil, err
	}
	return b, nil
}
