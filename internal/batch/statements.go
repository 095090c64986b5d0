package batch

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/extracto/internal/config"
	"github.com/cleared-dev/extracto/internal/extract"
	"github.com/cleared-dev/extracto/internal/model"
	"github.com/cleared-dev/extracto/internal/output"
	"github.com/cleared-dev/extracto/internal/rates"
)

// Table is one statement table written by the statements pass.
type Table struct {
	Path     string
	Source   string
	Owner    string
	Currency model.Currency
	Rows     int
	Rate     rates.ExchangeRate // zero value for LOCAL tables
}

// StatementsReport summarizes a statements pass.
type StatementsReport struct {
	Artifacts int
	Records   int
	Tables    []Table
	Skipped   []*ArtifactError
	// Unrouted counts records whose currency has no output in their source.
	Unrouted int
}

// AllSkipped reports whether artifacts were found and every one failed.
func (r StatementsReport) AllSkipped() bool {
	return r.Artifacts > 0 && len(r.Skipped) == r.Artifacts
}

type group struct {
	path     string
	owner    string
	currency model.Currency
	records  []model.Record
}

// Statements extracts every artifact of every configured source and
// writes one table per output path. An artifact that cannot be loaded or
// extracted is recorded in the report and the pass moves on.
func (r *Runner) Statements(ctx context.Context) (StatementsReport, error) {
	var report StatementsReport
	for _, src := range r.Config.Sources {
		if err := r.source(ctx, src, &report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (r *Runner) source(ctx context.Context, src config.Source, report *StatementsReport) error {
	log := r.Log.With().Str("source", src.Name).Logger()

	files, err := r.Store.Glob(src.Pattern)
	if err != nil {
		return fmt.Errorf("source %s: %w", src.Name, err)
	}
	if len(files) == 0 {
		log.Info().Str("pattern", src.Pattern).Msg("no artifacts matched")
		return nil
	}

	opts, err := extractOptions(src, r.Config.Owners)
	if err != nil {
		return err
	}
	ex := extract.New(opts, log)

	var groups []*group
	byPath := make(map[string]*group)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Artifacts++

		g, err := r.load(path, r.sourceLoader(src, path))
		if err != nil {
			report.Skipped = append(report.Skipped, &ArtifactError{Artifact: path, Err: err})
			log.Warn().Err(err).Str("artifact", path).Msg("artifact skipped")
			continue
		}
		st, err := ex.Extract(path, g)
		if err != nil {
			report.Skipped = append(report.Skipped, &ArtifactError{Artifact: path, Err: err})
			log.Warn().Err(err).Str("artifact", path).Msg("artifact skipped")
			continue
		}
		if len(st.Records) == 0 {
			log.Info().Str("artifact", path).Msg("no transactions found")
			continue
		}
		report.Records += len(st.Records)

		for _, rec := range st.Records {
			out := src.OutputPath(string(rec.Currency), rec.Owner)
			if out == "" {
				report.Unrouted++
				continue
			}
			grp, ok := byPath[out]
			if !ok {
				grp = &group{path: out, owner: rec.Owner, currency: rec.Currency}
				byPath[out] = grp
				groups = append(groups, grp)
			}
			if rec.Currency == model.CurrencyUSD {
				grp.currency = model.CurrencyUSD
			}
			grp.records = append(grp.records, rec)
		}
	}

	for _, grp := range groups {
		t := Table{
			Path:     grp.path,
			Source:   src.Name,
			Owner:    grp.owner,
			Currency: grp.currency,
			Rows:     len(grp.records),
		}
		rate := decimal.Zero
		if grp.currency == model.CurrencyUSD {
			// One rate per table, keyed by its first transaction date.
			t.Rate = r.Resolver.Resolve(ctx, grp.records[0].Date)
			rate = t.Rate.Rate
		}
		if err := r.save(grp.path, output.StatementGrid(grp.records, rate)); err != nil {
			return err
		}
		log.Info().
			Str("output", grp.path).
			Str("currency", string(grp.currency)).
			Int("rows", t.Rows).
			Str("rate", rate.String()).
			Msg("table written")
		report.Tables = append(report.Tables, t)
	}
	return nil
}
