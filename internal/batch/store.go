package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cleared-dev/extracto/internal/importer"
)

// Store is where input artifacts are read from and output tables are
// written to. Open must return an error satisfying errors.Is(err,
// fs.ErrNotExist) for absent paths.
type Store interface {
	Glob(pattern string) ([]string, error)
	Open(path string) (io.ReadSeekCloser, error)
	Create(path string) (io.WriteCloser, error)
}

// FileStore is a Store rooted at a directory of the local filesystem.
type FileStore struct {
	Dir string // "" means the working directory
}

func (s FileStore) abs(p string) string {
	if s.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// Glob returns matching files relative to Dir, in lexical order.
func (s FileStore) Glob(pattern string) ([]string, error) {
	matches, err := importer.Glob(s.abs(pattern))
	if err != nil {
		return nil, err
	}
	if s.Dir == "" || filepath.IsAbs(pattern) {
		return matches, nil
	}
	for i, m := range matches {
		rel, err := filepath.Rel(s.Dir, m)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", m, err)
		}
		matches[i] = rel
	}
	return matches, nil
}

// Open opens path for reading.
func (s FileStore) Open(path string) (io.ReadSeekCloser, error) {
	return os.Open(s.abs(path))
}

// Create truncates or creates path, along with its parent directories.
func (s FileStore) Create(path string) (io.WriteCloser, error) {
	p := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
	}
	return os.Create(p)
}
