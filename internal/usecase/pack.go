package usecase

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"arcutil/internal/adapter/archive"
	"arcutil/internal/adapter/coerce"
	"arcutil/internal/adapter/fs"
	"arcutil/internal/adapter/pathutil"
	"arcutil/internal/adapter/source"
	"arcutil/internal/domain"
	"arcutil/internal/port"
)

// ProgressFunc is called after each file is handled.
type ProgressFunc func(processed, total int, current string)

// ErrDuplicateEntry is returned when two walked nodes map to the same
// archive entry name.
var ErrDuplicateEntry = errors.New("duplicate archive entry")

// PackOptions tunes a single pack run.
type PackOptions struct {
	// ChangedOnly skips files whose size and modification time match the
	// manifest. Skipped files are never opened.
	ChangedOnly bool
	// MaterializeLimit is the largest file read into memory before writing.
	// Larger files are streamed. A negative limit streams every file and
	// zero means the default of 1 MiB.
	MaterializeLimit int64
	// Skip, when set, drops walked entries before anything is written.
	Skip func(e domain.WalkEntry) bool
}

var defaultPackOptions = PackOptions{MaterializeLimit: 1 << 20}

// withDefaults fills unset options. Zero values count as unset.
func (o PackOptions) withDefaults() (PackOptions, error) {
	if err := coerce.Defaults(&o, defaultPackOptions); err != nil {
		return o, err
	}
	return o, nil
}

// PackUseCase writes walked trees into an archive and keeps the manifest in
// step with what was written.
type PackUseCase struct {
	list   *ListUseCase
	opener port.Opener
	store  port.ManifestStore
	logger *slog.Logger
}

// NewPackUseCase creates a new pack use case. store may be nil, in which
// case no manifest is kept.
func NewPackUseCase(
	walker port.Walker,
	filter *fs.Filter,
	opener port.Opener,
	store port.ManifestStore,
	logger *slog.Logger,
) *PackUseCase {
	return &PackUseCase{
		list:   NewListUseCase(walker, filter, logger),
		opener: opener,
		store:  store,
		logger: logger,
	}
}

// packEntry is a walked node together with the name it is archived under.
type packEntry struct {
	domain.WalkEntry
	rel string
}

// Pack archives every root into w. Directories are written before their
// contents. With more than one root, names are prefixed with the base name
// of their root. Any walk, read or write failure aborts the run, and the
// manifest is only updated once every entry has been written.
func (u *PackUseCase) Pack(roots []string, w *archive.Writer, opts PackOptions, progress ProgressFunc) (*domain.PackResult, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	listed, err := u.list.List(roots, "")
	if err != nil {
		return nil, err
	}

	entries, err := u.plan(listed, w, opts.Skip)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, e := range entries {
		if !e.IsDir {
			total++
		}
	}

	result := &domain.PackResult{}
	seen := make(map[string]bool)
	var pending []domain.ManifestRecord
	processed := 0

	for _, e := range entries {
		if e.IsDir {
			if err := w.AddDirectory(e.rel, e.Info); err != nil {
				return nil, err
			}
			result.Directories++
			continue
		}

		processed++
		if progress != nil {
			progress(processed, total, e.rel)
		}

		if !e.Info.Mode().IsRegular() {
			u.logger.Warn("file ignored", "path", e.Path, "mode", e.Info.Mode().String())
			result.FilesIgnored++
			continue
		}

		name := w.Name(e.rel, false)
		seen[name] = true

		if opts.ChangedOnly && u.store != nil {
			rec, found, err := u.store.GetRecord(name)
			if err != nil {
				return nil, fmt.Errorf("failed to read manifest for %s: %w", name, err)
			}
			if found && rec.Unchanged(e.WalkEntry) {
				result.FilesUnchanged++
				continue
			}
		}

		digest, err := u.packFile(w, e, opts.MaterializeLimit)
		if err != nil {
			return nil, err
		}
		result.FilesAdded++
		u.logger.Debug("packed file", "name", name, "size", e.Info.Size(), "digest", digest)

		pending = append(pending, domain.ManifestRecord{
			Name:    name,
			Size:    e.Info.Size(),
			ModTime: e.Info.ModTime().Truncate(time.Second),
			Digest:  digest,
		})
	}

	if u.store != nil {
		removed, err := u.commitManifest(pending, seen)
		if err != nil {
			return nil, err
		}
		result.FilesRemoved = removed
	}

	result.BytesWritten = w.Written()
	return result, nil
}

// plan flattens the walk results into archive order, applies skip and
// rejects entries whose archive names collide.
func (u *PackUseCase) plan(listed []RootEntries, w *archive.Writer, skip func(domain.WalkEntry) bool) ([]packEntry, error) {
	var entries []packEntry
	names := make(map[string]string)

	for _, r := range listed {
		prefix := ""
		if len(listed) > 1 {
			prefix = filepath.Base(r.Root)
		}
		for _, e := range r.Entries {
			if skip != nil && skip(e) {
				u.logger.Debug("entry skipped", "path", e.Path)
				continue
			}

			rel := e.RelativePath
			if prefix != "" {
				rel = path.Join(pathutil.Unixify(prefix), rel)
			}

			name := w.Name(rel, e.IsDir)
			if other, ok := names[name]; ok {
				return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateEntry, name, other, e.Path)
			}
			names[name] = e.Path

			entries = append(entries, packEntry{WalkEntry: e, rel: rel})
		}
	}
	return entries, nil
}

// packFile writes one regular file and returns the hex blake3 digest of the
// bytes written. The file is opened lazily, only once the archive is ready
// for its content.
func (u *PackUseCase) packFile(w *archive.Writer, e packEntry, limit int64) (string, error) {
	v, err := source.Normalize(fs.LazyOpenFS(u.opener, e.Path))
	if err != nil {
		return "", err
	}

	hasher := blake3.New()

	if limit >= 0 && e.Info.Size() <= limit {
		buf, err := source.CollectValue(v)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", e.Path, err)
		}
		hasher.Write(buf)
		// the collected bytes win over a stat taken before the read
		if err := w.AddFile(e.rel, sizedInfo{e.Info, int64(len(buf))}, bytes.NewReader(buf)); err != nil {
			return "", err
		}
		return hex.EncodeToString(hasher.Sum(nil)), nil
	}

	rc := v.Reader()
	defer rc.Close()
	if err := w.AddFile(e.rel, e.Info, io.TeeReader(rc, hasher)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// commitManifest stores the records of this run and drops records for
// names that were not seen, in one batch.
func (u *PackUseCase) commitManifest(pending []domain.ManifestRecord, seen map[string]bool) (int, error) {
	records, err := u.store.ListRecords()
	if err != nil {
		return 0, fmt.Errorf("failed to list manifest: %w", err)
	}

	var remove []string
	for _, rec := range records {
		if !seen[rec.Name] {
			remove = append(remove, rec.Name)
		}
	}

	if err := u.store.ApplyRecords(pending, remove); err != nil {
		return 0, fmt.Errorf("failed to update manifest: %w", err)
	}
	return len(remove), nil
}

type sizedInfo struct {
	iofs.FileInfo
	size int64
}

func (s sizedInfo) Size() int64 { return s.size }
