// Package zip bundles rendered descriptions into a single archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"time"
)

// Entry is one file placed in the archive.
type Entry struct {
	Name string
	Data []byte
}

// Archive writes entries sorted by name with a fixed modification time, so
// the same input always produces the same bytes.
func Archive(entries []Entry, modified time.Time) ([]byte, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]struct{}, len(sorted))
	for _, e := range sorted {
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("zip: duplicate entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("zip: add %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finish archive: %w", err)
	}
	return buf.Bytes(), nil
}
