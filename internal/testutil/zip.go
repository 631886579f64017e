package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

type ZipEntry struct {
	Name    string
	Content string
	Dir     bool
}

// WriteZip writes entries, in order, to a new zip file under t.TempDir.
func WriteZip(t *testing.T, name string, entries ...ZipEntry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer file.Close()
	writer := zip.NewWriter(file)
	for _, entry := range entries {
		if entry.Dir {
			if _, err := writer.Create(entry.Name + "/"); err != nil {
				t.Fatalf("create dir entry: %v", err)
			}
			continue
		}
		w, err := writer.Create(entry.Name)
		if err != nil {
			t.Fatalf("create entry %s: %v", entry.Name, err)
		}
		if _, err := w.Write([]byte(entry.Content)); err != nil {
			t.Fatalf("write entry %s: %v", entry.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

// WriteFile writes raw bytes to a file under t.TempDir.
func WriteFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}
