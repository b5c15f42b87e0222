package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/cinegenre/internal/config"
	"github.com/cognicore/cinegenre/internal/logging"
	"github.com/cognicore/cinegenre/pkg/cinegenre"
	rescfg "github.com/cognicore/cinegenre/pkg/cinegenre/config"
	"github.com/cognicore/cinegenre/pkg/cinegenre/store/sqlite"
)

var (
	version = "dev"

	flagConfig string
	flagLevel  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "cinegenre",
	Short:         "Film genre prediction from plot descriptions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagLevel != "" {
			c.Logging.Level = flagLevel
		}
		logging.Init(c.Logging)
		cfg = c

		ctx, stop := signal.NotifyContext(logging.WithContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
		cobra.OnFinalize(stop)
		cmd.SetContext(ctx)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default cinegenre.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(versionCmd, prepareCmd, trainCmd, serveCmd, predictCmd, runsCmd)
	rootCmd.SetContext(context.Background())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cinegenre %s\n", version)
	},
}

// loadResources builds the normalizer, taxonomy and resolver from the
// resources section.
func loadResources() (*rescfg.Components, error) {
	comp, err := cfg.Loader().Load()
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	return comp, nil
}

// openFacade opens the corpus database and wires the training facade.
func openFacade(ctx context.Context) (*cinegenre.Cinegenre, error) {
	comp, err := loadResources()
	if err != nil {
		return nil, err
	}
	st, err := sqlite.OpenSQLite(ctx, cfg.Data.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return cinegenre.New(cinegenre.Options{
		Store:      st,
		Normalizer: comp.Normalizer,
		Taxonomy:   comp.Taxonomy,
		Training:   cfg.TrainOptions(),
		ModelDir:   cfg.Models.Dir,
	}), nil
}
