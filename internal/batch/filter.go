package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/extracto/internal/accounts"
	"github.com/cleared-dev/extracto/internal/output"
	"github.com/cleared-dev/extracto/internal/reconcile"
)

// AccountResult is the outcome of filtering one account's artifact.
type AccountResult struct {
	Label   string
	File    string
	Rows    int
	Removed int
	// NoEntries is set when the ledger holds nothing for the account and
	// the artifact was left untouched.
	NoEntries bool
}

// FilterReport summarizes a filter pass.
type FilterReport struct {
	Ledger   string
	Accounts []AccountResult
	Skipped  []*ArtifactError
	// Unconfigured lists ledger accounts with no artifact configured.
	Unconfigured []string
	Removed      int
}

// AllSkipped reports whether accounts were configured and none could be read.
func (r FilterReport) AllSkipped() bool {
	return len(r.Skipped) > 0 && len(r.Accounts) == 0
}

// Filter removes, from each configured account's artifact, the rows the
// reference ledger already records for that account. An artifact is only
// rewritten when at least one row was removed.
func (r *Runner) Filter(ctx context.Context) (FilterReport, error) {
	var report FilterReport

	ledger, err := r.findLedger()
	if err != nil {
		return report, err
	}
	report.Ledger = ledger

	g, err := r.load(ledger, r.registry().Get(filepath.Ext(ledger)))
	if err != nil {
		return report, err
	}
	rows, err := reconcile.ReadLedger(g, r.Config.Ledger.HeaderRow)
	if err != nil {
		return report, fmt.Errorf("%s: %w", ledger, err)
	}
	ix := reconcile.BuildKeysets(rows)
	r.Log.Info().Str("ledger", ledger).Int("rows", len(rows)).Int("accounts", ix.Accounts()).Msg("reference ledger loaded")

	svc := accounts.NewService(r.Config.Accounts)
	report.Unconfigured = svc.Unknown(ix.Labels())
	for _, label := range report.Unconfigured {
		r.Log.Info().Str("account", label).Msg("ledger account has no configured artifact")
	}

	for _, acct := range svc.All() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		log := r.Log.With().Str("account", acct.Label).Str("artifact", acct.File).Logger()

		ok, err := r.exists(acct.File)
		if err != nil {
			return report, fmt.Errorf("checking %s: %w", acct.File, err)
		}
		if !ok {
			report.Skipped = append(report.Skipped, &ArtifactError{
				Artifact: acct.File,
				Err:      fmt.Errorf("%s: %w for account %q", acct.File, ErrMissingArtifact, acct.Label),
			})
			log.Warn().Msg("artifact not found, account skipped")
			continue
		}

		if len(ix.For(acct.Label)) == 0 {
			report.Accounts = append(report.Accounts, AccountResult{Label: acct.Label, File: acct.File, NoEntries: true})
			log.Info().Msg("no ledger entries for account")
			continue
		}

		table, err := r.load(acct.File, r.registry().Get(filepath.Ext(acct.File)))
		if err != nil {
			report.Skipped = append(report.Skipped, &ArtifactError{Artifact: acct.File, Err: err})
			log.Warn().Err(err).Msg("artifact skipped")
			continue
		}
		records, err := reconcile.TableRecords(table, acct.Label)
		if err != nil {
			err = fmt.Errorf("%s: %w", acct.File, err)
			report.Skipped = append(report.Skipped, &ArtifactError{Artifact: acct.File, Err: err})
			log.Warn().Err(err).Msg("artifact skipped")
			continue
		}

		kept, removed := ix.Filter(records)
		res := AccountResult{Label: acct.Label, File: acct.File, Rows: len(records), Removed: removed}
		if removed > 0 {
			keep := make([]int, len(kept))
			for i, rec := range kept {
				keep[i] = rec.Row
			}
			if err := r.save(acct.File, output.Subset(table, keep)); err != nil {
				return report, err
			}
		}
		log.Info().Int("rows", res.Rows).Int("removed", removed).Msg("account filtered")
		report.Accounts = append(report.Accounts, res)
		report.Removed += removed
	}
	return report, nil
}

func (r *Runner) findLedger() (string, error) {
	for _, c := range r.Config.Ledger.Candidates {
		ok, err := r.exists(c)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", c, err)
		}
		if ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", reconcile.ErrLedgerNotFound, strings.Join(r.Config.Ledger.Candidates, ", "))
}
