package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/cinegenre/internal/source"
	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
)

var (
	flagPrimary       string
	flagSupplementary []string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build and store the base and augmented corpora",
	Long: `Read the primary and supplementary sources, normalize plots, map labels
to genre groups and store both dataset variants in the corpus database.

A missing supplementary file is skipped with a warning; the augmented corpus
then equals the base corpus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		primaryPath := cfg.Data.Primary
		if flagPrimary != "" {
			primaryPath = flagPrimary
		}
		supPaths := cfg.Data.Supplementary
		if cmd.Flags().Changed("supplementary") {
			supPaths = flagSupplementary
		}

		primary, err := source.Load(ctx, primaryPath)
		if err != nil {
			return err
		}
		supplementary, err := source.LoadOptional(ctx, supPaths)
		if err != nil {
			return err
		}

		cg, err := openFacade(ctx)
		if err != nil {
			return err
		}
		defer cg.Close()

		corpora, err := cg.Prepare(ctx, primary, supplementary...)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "GROUP\tBASE\tAUGMENTED")
		aug := make(map[string]int)
		for _, gc := range dataset.Stats(corpora.Augmented) {
			aug[gc.Group] = gc.Count
		}
		for _, gc := range dataset.Stats(corpora.Base) {
			fmt.Fprintf(w, "%s\t%d\t%d\n", gc.Group, gc.Count, aug[gc.Group])
			delete(aug, gc.Group)
		}
		for _, g := range slices.Sorted(maps.Keys(aug)) {
			fmt.Fprintf(w, "%s\t0\t%d\n", g, aug[g])
		}
		fmt.Fprintf(w, "total\t%d\t%d\n", len(corpora.Base), len(corpora.Augmented))
		return w.Flush()
	},
}

func init() {
	prepareCmd.Flags().StringVar(&flagPrimary, "primary", "", "primary source file (overrides data.primary)")
	prepareCmd.Flags().StringSliceVar(&flagSupplementary, "supplementary", nil, "supplementary source files (overrides data.supplementary)")
}
