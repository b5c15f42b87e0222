package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/cinegenre/internal/api"
	"github.com/cognicore/cinegenre/internal/logging"
	"github.com/cognicore/cinegenre/internal/metrics"
	"github.com/cognicore/cinegenre/internal/translate"
	"github.com/cognicore/cinegenre/pkg/cinegenre/artifact"
	"github.com/cognicore/cinegenre/pkg/cinegenre/inference"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

var flagPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Load the champion from the models directory and serve /predict.

Without a champion the server still starts; /health reports unhealthy and
/predict answers 503 until a model is trained and the server restarted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		if flagPort != 0 {
			cfg.Server.Port = flagPort
		}
		return api.NewServer(engine, cfg.Server).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides server.port)")
}

// newEngine builds the inference engine and loads the champion if present.
func newEngine() (*inference.Engine, error) {
	comp, err := loadResources()
	if err != nil {
		return nil, err
	}
	tr, err := translate.New(cfg.Translate)
	if err != nil {
		return nil, err
	}

	opts := []inference.Option{
		inference.WithNormalizer(comp.Normalizer),
		inference.WithResolver(comp.Resolver),
	}
	if tr != nil {
		opts = append(opts, inference.WithTranslator(tr))
	}
	engine := inference.NewEngine(opts...)

	if !artifact.Exists(cfg.Models.Dir) {
		logging.Warn().Str("dir", cfg.Models.Dir).Msg("no champion found, serving degraded")
		return engine, nil
	}

	champion, err := artifact.Load(cfg.Models.Dir)
	switch {
	case err == nil:
		engine.Load(champion)
		metrics.SetModel(champion.Model, champion.Variant)
		logging.Info().
			Str("model", champion.Model).
			Str("variant", champion.Variant).
			Int("classes", len(champion.Classes)).
			Msg("champion loaded")
	case errors.Is(err, internalerr.ErrModelUnavailable):
		logging.Warn().Err(err).Str("dir", cfg.Models.Dir).Msg("champion unusable, serving degraded")
	default:
		return nil, fmt.Errorf("load champion: %w", err)
	}
	return engine, nil
}
