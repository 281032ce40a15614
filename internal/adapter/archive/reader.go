package archive

import (
	"archive/tar"
	"fmt"
	"io"
)

// Entry is one member read back from an archive.
type Entry struct {
	Header *tar.Header
	Data   []byte
}

// ReadAll decodes every member of an archive written with compression c.
func ReadAll(r io.Reader, c Compression) ([]Entry, error) {
	dr, closeFn, err := decompressor(r, c)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s stream: %w", c, err)
	}
	defer closeFn()

	var entries []Entry
	tr := tar.NewReader(dr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", hdr.Name, err)
		}
		entries = append(entries, Entry{Header: hdr, Data: data})
	}
}
