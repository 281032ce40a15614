package fs

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// OSFS reads the host filesystem directly. Directory names come back in
// the order the operating system returns them.
type OSFS struct{}

func (OSFS) ReadDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (OSFS) Stat(name string) (iofs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// BillyFS adapts a go-billy filesystem to the walker and opener ports.
type BillyFS struct {
	fs billy.Filesystem
}

func NewBillyFS(fsys billy.Filesystem) *BillyFS {
	return &BillyFS{fs: fsys}
}

// NewInMemoryFS returns an empty in-memory filesystem.
func NewInMemoryFS() *BillyFS {
	return &BillyFS{fs: memfs.New()}
}

// NewChrootFS returns a filesystem rooted at the host directory dir.
func NewChrootFS(dir string) *BillyFS {
	return &BillyFS{fs: osfs.New(dir)}
}

func (b *BillyFS) ReadDirNames(dir string) ([]string, error) {
	infos, err := b.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", dir, err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

func (b *BillyFS) Stat(name string) (iofs.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", name, err)
	}
	return info, nil
}

func (b *BillyFS) Open(name string) (io.ReadCloser, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", name, err)
	}
	return f, nil
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // exposes the adapter target.
func (b *BillyFS) Raw() billy.Filesystem {
	return b.fs
}
