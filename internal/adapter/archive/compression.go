package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream compression wrapped around the tar.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the configuration name of a compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// Extension returns the conventional file suffix for the archive.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".tar.gz"
	case CompressionZstd:
		return ".tar.zst"
	case CompressionLZ4:
		return ".tar.lz4"
	default:
		return ".tar"
	}
}

// ParseCompression parses a compression from its configuration name.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// CompressionFromName guesses the compression from an archive file name.
func CompressionFromName(name string) (Compression, bool) {
	for _, c := range []Compression{CompressionGzip, CompressionZstd, CompressionLZ4} {
		if strings.HasSuffix(name, c.Extension()) {
			return c, true
		}
	}
	if strings.HasSuffix(name, ".tgz") {
		return CompressionGzip, true
	}
	if strings.HasSuffix(name, ".tar") {
		return CompressionNone, true
	}
	return 0, false
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// compressor wraps w in the encoder for c. A level of 0 keeps the
// encoder's default.
func compressor(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case CompressionZstd:
		opts := []zstd.EOption{}
		if level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		return zstd.NewWriter(w, opts...)
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if level > 0 && level < len(lz4Levels) {
			if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
				return nil, err
			}
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unknown compression: %s", c)
	}
}

// decompressor is the reading counterpart of compressor.
func decompressor(r io.Reader, c Compression) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch c {
	case CompressionNone:
		return r, noop, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() error { zr.Close(); return nil }, nil
	case CompressionLZ4:
		return lz4.NewReader(r), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown compression: %s", c)
	}
}
