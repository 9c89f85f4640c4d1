package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"

	"github.com/EchoTools/nitxtools/pkg/nitx"
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

// benchArchive builds a NITX archive holding a 512x512 RGBA8 gradient with
// a full mip chain and a 128x128 DXT1 cubemap.
func benchArchive(b *testing.B) []byte {
	b.Helper()
	tex := texture.NewTexture2D(pixfmt.RGBA8, 512, 512, 0)
	_ = tex.Visit(func(_ texture.Slot, s *surface.Surface) error {
		for y := range s.Height() {
			for x := range s.Width() {
				s.WriteRGBA(x, y, uint8(x), uint8(y), uint8(x^y), 255)
			}
		}
		return nil
	})
	cube := texture.NewCubemap(pixfmt.DXT1, 128, 128, 0)
	_ = cube.Visit(func(slot texture.Slot, s *surface.Surface) error {
		for i := range s.Bytes() {
			s.Bytes()[i] = byte(slot.Face*31 + i%64)
		}
		return nil
	})

	buf := NewBuffer(nil)
	w, err := nitx.NewWriter(buf)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := w.Add("gradient", tex); err != nil {
		b.Fatal(err)
	}
	if _, err := w.Add("sky", cube); err != nil {
		b.Fatal(err)
	}
	return buf.Bytes()
}

// BenchmarkEncode compresses an archive at several levels.
func BenchmarkEncode(b *testing.B) {
	data := benchArchive(b)

	for _, lvl := range []struct {
		name  string
		level int
	}{
		{"BestSpeed", zstd.BestSpeed},
		{"Default", DefaultCompressionLevel},
		{"BestCompression", zstd.BestCompression},
	} {
		b.Run(lvl.name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := Encode(NewBuffer(nil), data, WithCompressionLevel(lvl.level)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkOpen measures decompressing an archive and scanning its entries.
func BenchmarkOpen(b *testing.B) {
	data := benchArchive(b)
	buf := NewBuffer(nil)
	if err := Encode(buf, data); err != nil {
		b.Fatal(err)
	}
	encoded := buf.Bytes()

	b.Run("Decompress", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, _, err := Open(bytes.NewReader(encoded)); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("DecompressAndScan", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			out, _, err := Open(bytes.NewReader(encoded))
			if err != nil {
				b.Fatal(err)
			}
			if _, err := nitx.NewReader(out); err != nil {
				b.Fatal(err)
			}
		}
	})
}
