package nitx

import (
	"testing"

	"github.com/EchoTools/nitxtools/pkg/archive"
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

// BenchmarkCodec benchmarks entry encoding and decoding of a 1024x1024
// RGBA8 texture with a full mip chain.
func BenchmarkCodec(b *testing.B) {
	tex := texture.NewTexture2D(pixfmt.RGBA8, 1024, 1024, 0)
	fillPattern(tex, 1)

	b.Run("AppendEntry", func(b *testing.B) {
		b.SetBytes(int64(tex.MemorySize()))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := AppendEntry(archive.NewBuffer(nil), tex, "bench"); err != nil {
				b.Fatal(err)
			}
		}
	})

	buf := archive.NewBuffer(nil)
	if _, err := AppendEntry(buf, tex, "bench"); err != nil {
		b.Fatal(err)
	}

	b.Run("LoadEntry", func(b *testing.B) {
		b.SetBytes(int64(tex.MemorySize()))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := LoadEntry(buf, 0); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ReadEntryInfo", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := ReadEntryInfo(buf, 0); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkReaderScan benchmarks building the directory of a 256-entry
// archive.
func BenchmarkReaderScan(b *testing.B) {
	buf := archive.NewBuffer(nil)
	w, err := NewWriter(buf)
	if err != nil {
		b.Fatal(err)
	}
	tex := texture.NewTexture2D(pixfmt.DXT1, 64, 64, 0)
	for i := range 256 {
		if _, err := w.Add(string(rune('a'+i%26))+string(rune('A'+i/26)), tex); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewReader(buf); err != nil {
			b.Fatal(err)
		}
	}
}
