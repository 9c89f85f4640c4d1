// Package main provides a command-line tool for working with NITX texture
// archives.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/EchoTools/nitxtools/pkg/nitx"
)

var (
	mode           string
	configPath     string
	archivePath    string
	outputPath     string
	writePNG       bool
	forceOverwrite bool
	verbose        bool
	level          int
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: build, list, extract, pack, unpack")
	flag.StringVar(&configPath, "config", "", "Build description (TOML) for build mode")
	flag.StringVar(&archivePath, "archive", "", "Archive to read for list, extract, pack and unpack")
	flag.StringVar(&outputPath, "output", "", "Output file (build, pack, unpack) or directory (extract)")
	flag.BoolVar(&writePNG, "png", false, "Also write level 0 of every surface as PNG when extracting")
	flag.BoolVar(&forceOverwrite, "force", false, "Allow non-empty output directory")
	flag.BoolVar(&verbose, "verbose", false, "Log codec activity to stderr")
	flag.IntVar(&level, "level", 0, "zstd level for pack mode (0 = default)")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	if verbose {
		nitx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	switch mode {
	case "build":
		return runBuild()
	case "list":
		return runList()
	case "extract":
		if err := prepareOutputDir(); err != nil {
			return err
		}
		return runExtract()
	case "pack":
		return runPack()
	case "unpack":
		return runUnpack()
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}

	switch mode {
	case "build":
		if configPath == "" {
			return fmt.Errorf("build mode requires -config")
		}
	case "list":
		if archivePath == "" {
			return fmt.Errorf("list mode requires -archive")
		}
	case "extract", "pack", "unpack":
		if archivePath == "" || outputPath == "" {
			return fmt.Errorf("%s mode requires -archive and -output", mode)
		}
	default:
		return fmt.Errorf("mode must be one of build, list, extract, pack, unpack")
	}

	if level < 0 || level > 22 {
		return fmt.Errorf("level must be between 0 and 22")
	}
	return nil
}

func prepareOutputDir() error {
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if !forceOverwrite {
		empty, err := isDirEmpty(outputPath)
		if err != nil {
			return fmt.Errorf("check output directory: %w", err)
		}
		if !empty {
			return fmt.Errorf("output directory is not empty (use -force to override)")
		}
	}

	return nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdir(1)
	return err == io.EOF, nil
}
