package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict <description>",
	Short: "Predict the genre group of a plot description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		res, err := engine.Predict(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s) %.2f%%\n", res.Emoji, res.Name, res.Group, res.Confidence)
		if res.Description != "" {
			fmt.Fprintln(out, res.Description)
		}
		if res.TranslatedText != res.OriginalText {
			fmt.Fprintf(out, "translated: %s\n", res.TranslatedText)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w)
		for _, r := range res.Top {
			fmt.Fprintf(w, "%s\t%s\t%.2f%%\n", r.Emoji, r.Name, r.Probability)
		}
		return w.Flush()
	},
}
