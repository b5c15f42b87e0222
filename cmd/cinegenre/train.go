package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/selection"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evaluate every model on both corpora and save the champion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cg, err := openFacade(ctx)
		if err != nil {
			return err
		}
		defer cg.Close()

		report, err := cg.Train(ctx)
		if report != nil && len(report.Rows) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), selection.FormatTable(report.Rows))
		}
		if errors.Is(err, internalerr.ErrNotFound) {
			return fmt.Errorf("%w (run `cinegenre prepare` first)", err)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "champion: %s (%s corpus, score %s)\n",
			report.Champion.Model, report.Champion.Variant, selection.Percent(report.Champion.Score))
		fmt.Fprintf(out, "models:   %s\n", cfg.Models.Dir)
		fmt.Fprintf(out, "report:   %s\n", report.ReportPath)
		return nil
	},
}
