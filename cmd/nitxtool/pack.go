package main

import (
	"fmt"
	"os"

	"github.com/EchoTools/nitxtools/pkg/archive"
	"github.com/EchoTools/nitxtools/pkg/nitx"
)

// runPack wraps a plain archive in a zstd envelope.
func runPack() error {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	// Refuse anything the reader would not accept.
	if _, err := nitx.NewReader(archive.NewBuffer(data)); err != nil {
		return fmt.Errorf("check archive: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	lvl := level
	if lvl == 0 {
		lvl = archive.DefaultCompressionLevel
	}
	w, err := archive.NewWriter(f, archive.WithCompressionLevel(lvl))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	fmt.Printf("Packed %s\n", w.Header())
	return f.Close()
}

// runUnpack writes the decompressed content of an envelope.
func runUnpack() error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	compressed, err := archive.IsCompressed(f)
	if err != nil {
		return err
	}
	if !compressed {
		return fmt.Errorf("%s is not a compressed archive", archivePath)
	}

	data, err := archive.ReadAll(f)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("Unpacked %d bytes to %s\n", len(data), outputPath)
	return nil
}
