// Package batch runs the statement and filter passes over a working set of
// artifacts, skipping artifacts that fail and reporting what happened.
package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/extracto/internal/config"
	"github.com/cleared-dev/extracto/internal/extract"
	"github.com/cleared-dev/extracto/internal/importer"
	"github.com/cleared-dev/extracto/internal/model"
	"github.com/cleared-dev/extracto/internal/output"
	"github.com/cleared-dev/extracto/internal/rates"
)

// ErrMissingArtifact means an expected input file does not exist.
var ErrMissingArtifact = errors.New("missing artifact")

// ArtifactError records why one artifact was skipped. Err already names
// the artifact.
type ArtifactError struct {
	Artifact string
	Err      error
}

func (e *ArtifactError) Error() string { return e.Err.Error() }

func (e *ArtifactError) Unwrap() error { return e.Err }

// Runner drives both passes. Every field but Store and Config is optional.
type Runner struct {
	Store    Store
	Config   *config.Config
	Resolver *rates.Resolver
	Registry *importer.Registry
	Log      zerolog.Logger
}

// NewRunner creates a Runner with the default loader registry. A nil
// resolver defaults every USD rate to zero.
func NewRunner(store Store, cfg *config.Config, resolver *rates.Resolver, log zerolog.Logger) *Runner {
	if resolver == nil {
		resolver = rates.NewResolver(nil, nil, nil, 0, log)
	}
	return &Runner{
		Store:    store,
		Config:   cfg,
		Resolver: resolver,
		Registry: importer.DefaultRegistry(),
		Log:      log,
	}
}

func (r *Runner) registry() *importer.Registry {
	if r.Registry == nil {
		r.Registry = importer.DefaultRegistry()
	}
	return r.Registry
}

func (r *Runner) exists(path string) (bool, error) {
	f, err := r.Store.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, f.Close()
}

func (r *Runner) load(path string, l importer.Loader) (model.Grid, error) {
	if l == nil {
		return model.Grid{}, fmt.Errorf("%s: %w", path, importer.ErrUnsupportedFormat)
	}
	f, err := r.Store.Open(path)
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

func (r *Runner) save(path string, g model.Grid) error {
	w, err := r.Store.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := output.WriteXLSX(w, g); err != nil {
		w.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// sourceLoader picks the loader for one artifact of src. CSV files get the
// source's delimiter and encoding; XLS files log cell warnings under the
// artifact's name.
func (r *Runner) sourceLoader(src config.Source, path string) importer.Loader {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".csv":
		comma := ','
		if src.Comma != "" {
			comma = []rune(src.Comma)[0]
		}
		return &importer.CSVLoader{Comma: comma, Encoding: src.Encoding}
	case ".xls":
		return &importer.XLSLoader{Log: r.Log.With().Str("artifact", path).Logger()}
	}
	return r.registry().Get(ext)
}

func extractOptions(src config.Source, owners map[string][]string) (extract.Options, error) {
	opts := extract.Options{
		SkipMarkers:    src.SkipMarkers,
		CurrencyColumn: src.CurrencyColumn,
		OwnerCodes:     owners,
	}
	if src.HeaderRow != nil {
		opts.Locator = extract.FixedLocator{Row: *src.HeaderRow}
	}
	if len(src.Keywords) > 0 {
		extra := make(map[extract.Role][]string, len(src.Keywords))
		for name, kws := range src.Keywords {
			role, err := extract.ParseRole(name)
			if err != nil {
				return extract.Options{}, fmt.Errorf("source %s: %w", src.Name, err)
			}
			extra[role] = kws
		}
		opts.Roles = extract.DefaultRoleTable.With(extra)
	}
	return opts, nil
}
