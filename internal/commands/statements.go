package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/extracto/internal/batch"
)

func newStatementsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "statements",
		Short: "Extract statements into per-currency tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.runner(cmd)
			if err != nil {
				return err
			}
			report, err := r.Statements(cmd.Context())
			if err != nil {
				return err
			}
			printStatements(cmd.OutOrStdout(), report)
			appendHistory(cmd.Context(), opts.dir, statementsHistory(time.Now(), report))
			if report.AllSkipped() {
				return ErrAllSkipped
			}
			return nil
		},
	}
}

func printStatements(w io.Writer, report batch.StatementsReport) {
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "skipped %s: %v\n", s.Artifact, s.Err)
	}
	for _, t := range report.Tables {
		if t.Rate.State.Terminal() {
			fmt.Fprintf(w, "wrote %s (%d rows, rate %s from %s)\n", t.Path, t.Rows, t.Rate.Rate, t.Rate.Source)
			continue
		}
		fmt.Fprintf(w, "wrote %s (%d rows)\n", t.Path, t.Rows)
	}
	fmt.Fprintf(w, "%d artifacts, %d records, %d tables, %d skipped\n",
		report.Artifacts, report.Records, len(report.Tables), len(report.Skipped))
}
