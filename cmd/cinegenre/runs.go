package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/cinegenre/pkg/cinegenre/selection"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded training runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cg, err := openFacade(ctx)
		if err != nil {
			return err
		}
		defer cg.Close()

		runs, err := cg.Runs(ctx, flagRunsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tVARIANT\tROWS\tBEST\tF1\tREMOVED")
		for _, r := range runs {
			f1 := "-"
			for _, res := range r.Results {
				if res.Model == r.Best {
					f1 = selection.Percent(res.F1)
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Variant, r.Rows, r.Best, f1, strings.Join(r.Removed, ","))
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "maximum runs to list (0 for all)")
}
