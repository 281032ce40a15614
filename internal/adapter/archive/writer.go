// Package archive writes walk results and in-memory sources into a
// (optionally compressed) tar stream.
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"

	"arcutil/internal/adapter/coerce"
	"arcutil/internal/adapter/pathutil"
	"arcutil/internal/adapter/source"
)

type Options struct {
	Compression Compression
	Level       int
	// Prefix is prepended to every entry name.
	Prefix string
	// Date, when set, replaces the modification time of every entry. Any
	// value coerce.Dateify accepts is allowed.
	Date any
}

// EntryData describes an entry built from a byte source rather than a file.
type EntryData struct {
	Mode    fs.FileMode
	ModTime any
}

var defaultEntryData = EntryData{Mode: 0o644}

type Writer struct {
	tw      *tar.Writer
	comp    io.WriteCloser
	prefix  string
	date    time.Time
	written int64
}

func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	var date time.Time
	if opts.Date != nil && opts.Date != "" {
		d, err := coerce.Dateify(opts.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse archive date: %w", err)
		}
		date = d
	}

	comp, err := compressor(w, opts.Compression, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s compressor: %w", opts.Compression, err)
	}

	out := w
	if comp != nil {
		out = comp
	}

	return &Writer{
		tw:     tar.NewWriter(out),
		comp:   comp,
		prefix: pathutil.Sanitize(opts.Prefix),
		date:   date,
	}, nil
}

// Name returns the entry name rel is stored under.
func (w *Writer) Name(rel string, dir bool) string {
	name := path.Join(w.prefix, pathutil.Sanitize(rel))
	if dir {
		return pathutil.TrailingSlash(name)
	}
	return name
}

// Written returns the number of content bytes written so far.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) AddDirectory(rel string, info fs.FileInfo) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     w.Name(rel, true),
		Mode:     int64(info.Mode().Perm()),
		ModTime:  w.modTime(info.ModTime()),
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write directory header %s: %w", hdr.Name, err)
	}
	return nil
}

// AddFile writes a regular file whose content is read from r. r must yield
// exactly info.Size() bytes.
func (w *Writer) AddFile(rel string, info fs.FileInfo, r io.Reader) error {
	return w.writeFile(w.Name(rel, false), info.Size(), info.Mode().Perm(), w.modTime(info.ModTime()), r)
}

// Append adds an entry built from any byte source. Streams are collected
// first because a tar header needs the size up front.
func (w *Writer) Append(rel string, src any, data EntryData) error {
	if err := coerce.Defaults(&data, defaultEntryData); err != nil {
		return err
	}

	v, err := source.Normalize(src)
	if err != nil {
		return fmt.Errorf("failed to normalize source for %s: %w", rel, err)
	}
	buf, err := source.CollectValue(v)
	if err != nil {
		return fmt.Errorf("failed to collect source for %s: %w", rel, err)
	}

	mtime, err := coerce.Dateify(data.ModTime)
	if err != nil {
		return err
	}

	return w.writeFile(w.Name(rel, false), int64(len(buf)), data.Mode.Perm(), w.modTime(mtime), bytes.NewReader(buf))
}

func (w *Writer) writeFile(name string, size int64, mode fs.FileMode, mtime time.Time, r io.Reader) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     size,
		Mode:     int64(mode),
		ModTime:  mtime,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header %s: %w", name, err)
	}

	n, err := io.Copy(w.tw, r)
	w.written += n
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if n != size {
		return fmt.Errorf("failed to write %s: got %d bytes, expected %d", name, n, size)
	}
	return nil
}

func (w *Writer) modTime(t time.Time) time.Time {
	if !w.date.IsZero() {
		return w.date
	}
	return t
}

// Close flushes the tar trailer and the compressor. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if err := w.tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if w.comp != nil {
		if err := w.comp.Close(); err != nil {
			return fmt.Errorf("failed to finish %T stream: %w", w.comp, err)
		}
	}
	return nil
}
