package fs

import (
	"errors"
	"fmt"
	"io"

	"arcutil/internal/port"
)

// LazyReader opens its file on the first Read instead of at construction.
// The file is closed again at EOF, and a later Read starts over on a freshly
// opened file.
type LazyReader struct {
	opener port.Opener
	name   string
	cur    io.ReadCloser
}

// LazyOpen returns a reader for a host file that is not opened until read.
func LazyOpen(name string) *LazyReader {
	return LazyOpenFS(OSFS{}, name)
}

// LazyOpenFS is LazyOpen over an arbitrary opener.
func LazyOpenFS(o port.Opener, name string) *LazyReader {
	return &LazyReader{opener: o, name: name}
}

func (l *LazyReader) Name() string {
	return l.name
}

func (l *LazyReader) Read(p []byte) (int, error) {
	if l.cur == nil {
		rc, err := l.opener.Open(l.name)
		if err != nil {
			return 0, fmt.Errorf("failed to open %q: %w", l.name, err)
		}
		l.cur = rc
	}

	n, err := l.cur.Read(p)
	if errors.Is(err, io.EOF) {
		if cerr := l.release(); cerr != nil {
			return n, cerr
		}
	}
	return n, err
}

// Close releases the currently open file, if any.
func (l *LazyReader) Close() error {
	return l.release()
}

func (l *LazyReader) release() error {
	if l.cur == nil {
		return nil
	}
	err := l.cur.Close()
	l.cur = nil
	if err != nil {
		return fmt.Errorf("failed to close %q: %w", l.name, err)
	}
	return nil
}
