// Package archivetest builds AES-encrypted ZIP fixtures for tests.
package archivetest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/yeka/zip"
)

// File is a single archive entry.
type File struct {
	Name string
	Data []byte
}

// Bytes returns a ZIP archive holding files. Entries are AES-256 encrypted
// with password unless it is empty.
func Bytes(t testing.TB, password string, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		var (
			fw  io.Writer
			err error
		)
		if password == "" {
			fw, err = w.Create(f.Name)
		} else {
			fw, err = w.Encrypt(f.Name, password, zip.AES256Encryption)
		}
		if err != nil {
			t.Fatalf("Failed to add %s to archive: %v", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			t.Fatalf("Failed to write %s to archive: %v", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish archive: %v", err)
	}

	return buf.Bytes()
}

// Write stores an archive built by Bytes at path, creating parent directories.
func Write(t testing.TB, path, password string, files ...File) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	// #nosec G306 -- test fixture.
	if err := os.WriteFile(path, Bytes(t, password, files...), 0644); err != nil {
		t.Fatalf("Failed to write archive %s: %v", path, err)
	}
}
