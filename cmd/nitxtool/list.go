package main

import (
	"fmt"
	"os"

	"github.com/EchoTools/nitxtools/pkg/archive"
	"github.com/EchoTools/nitxtools/pkg/nitx"
)

// openArchive reads a plain or compressed archive into memory and scans its
// entries. The envelope header is nil for plain archives.
func openArchive(path string) (*nitx.Reader, *archive.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	buf, env, err := archive.Open(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read archive: %w", err)
	}
	r, err := nitx.NewReader(buf)
	if err != nil {
		return nil, nil, err
	}
	return r, env, nil
}

func runList() error {
	r, env, err := openArchive(archivePath)
	if err != nil {
		return err
	}

	h := r.Header()
	fmt.Printf("%s version %d, %d entries\n", h.Tag[:], h.Version, len(r.Entries()))
	if env != nil {
		fmt.Printf("Compressed: %s\n", env)
	}
	fmt.Printf("%-10s %-24s %-9s %-8s %-13s %4s %10s\n", "OFFSET", "NAME", "KIND", "FORMAT", "SIZE", "MIPS", "BYTES")

	var total int64
	for _, e := range r.Entries() {
		size := fmt.Sprintf("%dx%d", e.Width, e.Height)
		if e.Depth > 1 {
			size = fmt.Sprintf("%s x%d", size, e.Depth)
		}
		fmt.Printf("%-10d %-24s %-9s %-8s %-13s %4d %10d\n",
			e.Offset, e.Name, e.Kind, e.Format, size, e.MipCount, e.DataSize)
		total += e.DataSize
	}
	fmt.Printf("Total pixel data: %d bytes\n", total)
	return nil
}
