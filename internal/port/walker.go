package port

import (
	"io"
	"io/fs"

	"arcutil/internal/domain"
)

type Walker interface {
	Walk(root, base string) ([]domain.WalkEntry, error)
}

// Lister is the filesystem surface a walk needs. ReadDirNames must return
// names in the order the backend produces them.
type Lister interface {
	ReadDirNames(dir string) ([]string, error)
	Stat(name string) (fs.FileInfo, error)
}

type Opener interface {
	Open(name string) (io.ReadCloser, error)
}
