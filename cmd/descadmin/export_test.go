package main

import (
	"archive/zip"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"descsvc/internal/description"
	"descsvc/internal/storage"
)

func TestExportSubject(t *testing.T) {
	dir := t.TempDir()
	blobs, err := storage.NewFileStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	for item, body := range map[string]string{"001": "one", "002": "two"} {
		if err := blobs.Put(ctx, description.OutputKey("Novel", item), []byte(body), "text/plain"); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	out := filepath.Join(dir, "novel.zip")
	n, err := exportSubject(ctx, blobs, "Novel", out, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("exportSubject: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d", n)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 || zr.File[0].Name != "001.txt" {
		t.Fatalf("archive entries = %v", zr.File)
	}

	if _, err := exportSubject(ctx, blobs, "Empty", filepath.Join(dir, "e.zip"), time.Now()); err == nil || !strings.Contains(err.Error(), "no descriptions") {
		t.Fatalf("expected empty subject error, got %v", err)
	}
}
