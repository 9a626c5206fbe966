package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yeka/zip"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

// Archive is an open encrypted ZIP file.
type Archive struct {
	path     string
	password string
	rc       *zip.ReadCloser
}

// Open opens the archive at path. The password is applied to every encrypted
// entry when it is extracted.
func Open(path, password string) (*Archive, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrArchiveNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrArchiveCorrupt, path, err)
	}

	return &Archive{path: path, password: password, rc: rc}, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.rc.Close()
}

// Entries lists the entry names in archive order.
func (a *Archive) Entries() []string {
	names := make([]string, 0, len(a.rc.File))
	for _, f := range a.rc.File {
		names = append(names, f.Name)
	}
	return names
}

// ExtractAll writes every entry below dest and returns the written file paths.
func (a *Archive) ExtractAll(dest string) ([]string, error) {
	return a.Extract(dest, nil)
}

// Extract writes the entries matching any of the doublestar patterns below
// dest. No patterns means every entry.
func (a *Archive) Extract(dest string, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	if err := os.MkdirAll(dest, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	var written []string
	for _, f := range a.rc.File {
		if !matchesAny(patterns, f.Name) {
			continue
		}

		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return written, fmt.Errorf("%s: %w", a.path, err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0700); err != nil {
				return written, fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}

		if err := a.extractFile(f, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}

	return written, nil
}

func (a *Archive) extractFile(f *zip.File, target string) error {
	if f.IsEncrypted() {
		f.SetPassword(a.password)
	}

	r, err := f.Open()
	if err != nil {
		return a.classify(f.Name, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	w := &recordingWriter{w: out}
	_, copyErr := io.Copy(w, r)
	closeErr := out.Close()

	if copyErr != nil {
		_ = os.Remove(target)
		if w.err != nil {
			return fmt.Errorf("failed to write %s: %w", target, copyErr)
		}
		return a.classify(f.Name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write %s: %w", target, closeErr)
	}

	return nil
}

func (a *Archive) classify(entry string, err error) error {
	if errors.Is(err, zip.ErrPassword) || errors.Is(err, zip.ErrAuthentication) {
		return fmt.Errorf("%w: %s (%s)", kerrors.ErrBadPassword, a.path, entry)
	}
	return fmt.Errorf("%w: %s (%s): %v", kerrors.ErrArchiveCorrupt, a.path, entry, err)
}

// Extractor opens, extracts and closes an archive in one call.
type Extractor struct{}

// Extract implements the pipeline's extraction step.
func (Extractor) Extract(path, password, dest string, patterns []string) ([]string, error) {
	a, err := Open(path, password)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.Extract(dest, patterns)
}

func matchesAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// safeJoin resolves an entry name below dest, rejecting absolute paths and
// ".." traversal.
func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: absolute entry path %q", kerrors.ErrArchiveCorrupt, name)
	}

	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes destination", kerrors.ErrArchiveCorrupt, name)
	}

	return target, nil
}

type recordingWriter struct {
	w   io.Writer
	err error
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.w.Write(p)
	if err != nil {
		rw.err = err
	}
	return n, err
}
