package domain

import (
	"io/fs"
	"time"
)

// WalkEntry is one filesystem node discovered by a walk.
type WalkEntry struct {
	Path         string
	RelativePath string
	IsDir        bool
	Info         fs.FileInfo
}

// ManifestRecord is what the manifest remembers about an archived file.
type ManifestRecord struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Digest  string    `json:"digest"`
}

// Unchanged reports whether e still matches the size and modification time
// recorded in r.
func (r ManifestRecord) Unchanged(e WalkEntry) bool {
	if e.Info == nil {
		return false
	}
	return r.Size == e.Info.Size() && r.ModTime.Equal(e.Info.ModTime().Truncate(time.Second))
}

// PackResult summarizes one pack run.
type PackResult struct {
	FilesAdded     int
	FilesUnchanged int
	FilesRemoved   int
	FilesIgnored   int
	Directories    int
	BytesWritten   int64
}
