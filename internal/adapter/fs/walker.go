package fs

import (
	"fmt"
	"path/filepath"

	"arcutil/internal/adapter/pathutil"
	"arcutil/internal/domain"
	"arcutil/internal/port"
)

// ListingError reports a directory that could not be enumerated.
type ListingError struct {
	Path string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("failed to list directory %q: %v", e.Path, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// StatError reports an entry whose metadata could not be read.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %q: %v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

// Walker enumerates a directory subtree in pre-order, depth first.
type Walker struct {
	lister port.Lister
}

func NewWalker(lister port.Lister) *Walker {
	if lister == nil {
		lister = OSFS{}
	}
	return &Walker{lister: lister}
}

// frame is one directory whose listing is being consumed.
type frame struct {
	dir   string
	names []string
	next  int
}

// Walk lists every node below root. Entries appear in pre-order: a
// directory precedes its descendants and siblings keep listing order.
// RelativePath is computed against base, or root when base is empty.
//
// Any listing or stat failure aborts the whole walk and no entries are
// returned.
func (w *Walker) Walk(root, base string) ([]domain.WalkEntry, error) {
	if base == "" {
		base = root
	}

	names, err := w.lister.ReadDirNames(root)
	if err != nil {
		return nil, &ListingError{Path: root, Err: err}
	}

	var entries []domain.WalkEntry
	stack := []*frame{{dir: root, names: names}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.names) {
			stack = stack[:len(stack)-1]
			continue
		}

		name := top.names[top.next]
		top.next++

		path := filepath.Join(top.dir, name)
		info, err := w.lister.Stat(path)
		if err != nil {
			return nil, &StatError{Path: path, Err: err}
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil, fmt.Errorf("failed to relate %q to %q: %w", path, base, err)
		}

		entries = append(entries, domain.WalkEntry{
			Path:         path,
			RelativePath: pathutil.Unixify(rel),
			IsDir:        info.IsDir(),
			Info:         info,
		})

		if !info.IsDir() {
			continue
		}

		children, err := w.lister.ReadDirNames(path)
		if err != nil {
			return nil, &ListingError{Path: path, Err: err}
		}
		stack = append(stack, &frame{dir: path, names: children})
	}

	return entries, nil
}
