package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/extracto/internal/reconcile"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Extract statements, then filter them against the reference ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.runner(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statements, err := r.Statements(cmd.Context())
			if err != nil {
				return err
			}
			printStatements(out, statements)
			appendHistory(cmd.Context(), opts.dir, statementsHistory(time.Now(), statements))

			filtered, err := r.Filter(cmd.Context())
			switch {
			case errors.Is(err, reconcile.ErrLedgerNotFound):
				// Nothing recorded yet; the fresh tables are the result.
				fmt.Fprintf(out, "filter skipped: %v\n", err)
				if statements.AllSkipped() {
					return ErrAllSkipped
				}
				return nil
			case err != nil:
				return err
			}
			printFilter(out, filtered)
			appendHistory(cmd.Context(), opts.dir, filterHistory(time.Now(), filtered))

			if statements.AllSkipped() && (filtered.AllSkipped() || len(filtered.Accounts) == 0) {
				return ErrAllSkipped
			}
			return nil
		},
	}
}
