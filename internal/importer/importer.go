// Package importer reads statement files into grids.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/extracto/internal/model"
)

// ErrUnsupportedFormat is returned for files with no registered loader.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Loader converts a spreadsheet or delimited file into a Grid.
type Loader interface {
	Load(r io.ReadSeeker) (model.Grid, error)
	Format() string
}

// Registry holds loaders keyed by file extension.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds a loader for its format. Panics on duplicate format.
func (r *Registry) Register(l Loader) {
	key := normalizeFormat(l.Format())
	if _, ok := r.loaders[key]; ok {
		panic("duplicate loader format: " + key)
	}
	r.loaders[key] = l
}

// Get returns the loader for format ("xlsx", ".XLSX", ...), or nil.
func (r *Registry) Get(format string) Loader {
	return r.loaders[normalizeFormat(format)]
}

// DefaultRegistry returns a registry with the CSV, XLSX and XLS loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVLoader{Comma: ','})
	r.Register(&XLSXLoader{})
	r.Register(&XLSLoader{})
	return r
}

// LoadFile opens path and loads it with the loader for its extension.
func (r *Registry) LoadFile(path string) (model.Grid, error) {
	l := r.Get(filepath.Ext(path))
	if l == nil {
		return model.Grid{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Grid{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	g, err := l.Load(f)
	if err != nil {
		return model.Grid{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return g, nil
}

// Glob returns the files matching pattern in lexical order.
func Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(format), ".")
}
