package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/extracto/internal/batch"
)

func newFilterCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filter",
		Short: "Remove rows already recorded in the reference ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.runner(cmd)
			if err != nil {
				return err
			}
			report, err := r.Filter(cmd.Context())
			if err != nil {
				return err
			}
			printFilter(cmd.OutOrStdout(), report)
			appendHistory(cmd.Context(), opts.dir, filterHistory(time.Now(), report))
			if report.AllSkipped() {
				return ErrAllSkipped
			}
			return nil
		},
	}
}

func printFilter(w io.Writer, report batch.FilterReport) {
	fmt.Fprintf(w, "ledger: %s\n", report.Ledger)
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "skipped %s: %v\n", s.Artifact, s.Err)
	}
	for _, a := range report.Accounts {
		switch {
		case a.NoEntries:
			fmt.Fprintf(w, "%s: no ledger entries, %s left as is\n", a.Label, a.File)
		case a.Removed == 0:
			fmt.Fprintf(w, "%s: nothing to remove from %s\n", a.Label, a.File)
		default:
			fmt.Fprintf(w, "%s: removed %d of %d rows from %s\n", a.Label, a.Removed, a.Rows, a.File)
		}
	}
	fmt.Fprintf(w, "%d rows removed\n", report.Removed)
}
