package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/extracto/internal/batch"
	"github.com/cleared-dev/extracto/internal/history"
	"github.com/cleared-dev/extracto/internal/logger"
)

func statementsHistory(now time.Time, report batch.StatementsReport) []history.Entry {
	var entries []history.Entry
	for _, s := range report.Skipped {
		entries = append(entries, history.Entry{
			Timestamp: now, Command: "statements", Action: history.ActionArtifactSkipped,
			Artifact: s.Artifact, Details: s.Err.Error(),
		})
	}
	for _, t := range report.Tables {
		details := fmt.Sprintf("%d rows, %s", t.Rows, t.Currency)
		if t.Rate.State.Terminal() {
			details += fmt.Sprintf(", rate %s (%s)", t.Rate.Rate, t.Rate.Source)
		}
		entries = append(entries, history.Entry{
			Timestamp: now, Command: "statements", Action: history.ActionTableWritten,
			Artifact: t.Path, Details: details,
		})
	}
	return entries
}

func filterHistory(now time.Time, report batch.FilterReport) []history.Entry {
	var entries []history.Entry
	for _, s := range report.Skipped {
		entries = append(entries, history.Entry{
			Timestamp: now, Command: "filter", Action: history.ActionArtifactSkipped,
			Artifact: s.Artifact, Details: s.Err.Error(),
		})
	}
	for _, a := range report.Accounts {
		if a.Removed == 0 {
			continue
		}
		entries = append(entries, history.Entry{
			Timestamp: now, Command: "filter", Action: history.ActionRowsRemoved,
			Artifact: a.File, Details: fmt.Sprintf("%d of %d rows already in %s for %s", a.Removed, a.Rows, report.Ledger, a.Label),
		})
	}
	return entries
}

func appendHistory(ctx context.Context, dir string, entries []history.Entry) {
	if err := history.Append(dir, entries); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("dir", dir).Msg("failed to write history")
	}
}
