package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"arcutil/config"
	"arcutil/internal/adapter/archive"
	"arcutil/internal/adapter/fs"
	"arcutil/internal/logging"
	"arcutil/internal/usecase"
)

// countingWriter discards archive bytes while counting them.
type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

func main() {
	dir := flag.String("dir", ".", "Directory to walk and pack")
	runs := flag.Int("n", 3, "Runs per measurement")
	limit := flag.Int64("limit", 1<<20, "Materialize limit in bytes (negative streams every file, 0 uses the 1 MiB default)")
	flag.Parse()

	root, err := filepath.Abs(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving directory: %v\n", err)
		os.Exit(1)
	}
	if *runs <= 0 {
		*runs = 1
	}

	cfg, err := config.LoadFromDir(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("WALK / PACK BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Root: %s\n", root)
	fmt.Printf("Runs: %d\n", *runs)
	fmt.Println()

	walker := fs.NewWalker(fs.OSFS{})

	var entries int
	walkTime, err := measure(*runs, func() error {
		res, err := walker.Walk(root, "")
		entries = len(res)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Walk failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%-10s %8d entries  %12s/run\n", "walk", entries, walkTime)
	fmt.Println(strings.Repeat("-", 70))

	filter := fs.NewFilter(cfg.Walk.Includes, cfg.Walk.Excludes)
	packUC := usecase.NewPackUseCase(walker, filter, fs.OSFS{}, nil, logging.Discard())

	for _, c := range []archive.Compression{
		archive.CompressionNone,
		archive.CompressionGzip,
		archive.CompressionZstd,
		archive.CompressionLZ4,
	} {
		var (
			out    countingWriter
			result int64
			files  int
		)
		elapsed, err := measure(*runs, func() error {
			out = countingWriter{}
			w, err := archive.NewWriter(&out, archive.Options{Compression: c, Level: cfg.Pack.Level})
			if err != nil {
				return err
			}
			res, err := packUC.Pack([]string{root}, w, usecase.PackOptions{MaterializeLimit: *limit}, nil)
			if err != nil {
				return err
			}
			result, files = res.BytesWritten, res.FilesAdded
			return w.Close()
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Pack (%s) failed: %v\n", c, err)
			os.Exit(1)
		}

		fmt.Printf("%-10s %8d files  %12s/run  %s -> %s (%.1f%%)\n",
			c, files, elapsed, humanBytes(result), humanBytes(out.n), ratio(out.n, result))
	}
}

func measure(runs int, fn func() error) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < runs; i++ {
		if err := fn(); err != nil {
			return 0, err
		}
	}
	return (time.Since(start) / time.Duration(runs)).Round(time.Microsecond), nil
}

func ratio(compressed, raw int64) float64 {
	if raw == 0 {
		return 0
	}
	return float64(compressed) / float64(raw) * 100
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGT"[exp])
}
