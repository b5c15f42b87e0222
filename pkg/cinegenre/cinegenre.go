package cinegenre

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cognicore/cinegenre/pkg/cinegenre/artifact"
	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/selection"
	"github.com/cognicore/cinegenre/pkg/cinegenre/store"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
	"github.com/cognicore/cinegenre/pkg/cinegenre/textnorm"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
)

// Cinegenre is the training facade: it assembles corpora, evaluates both
// dataset variants and persists the champion.
type Cinegenre struct {
	store      store.Store
	normalizer *textnorm.Normalizer
	taxonomy   *taxonomy.Taxonomy
	training   train.Options
	modelDir   string

	assemblerOnce sync.Once
	assembler     *dataset.Assembler
	assemblerErr  error
}

// Options configures a Cinegenre instance
type Options struct {
	Store store.Store

	// Normalizer defaults to textnorm.NewEnglish.
	Normalizer *textnorm.Normalizer
	Taxonomy   *taxonomy.Taxonomy

	// Training holds the evaluation settings; Variant is set per run.
	Training train.Options

	// ModelDir receives the champion files and the comparison report.
	ModelDir string
}

// New creates a Cinegenre instance with the given dependencies
func New(opts Options) *Cinegenre {
	tax := opts.Taxonomy
	if tax == nil {
		tax = taxonomy.Default()
	}
	// flexible accuracy must map secondary labels with the same table
	training := opts.Training
	training.Taxonomy = tax
	return &Cinegenre{
		store:      opts.Store,
		normalizer: opts.Normalizer,
		taxonomy:   tax,
		training:   training,
		modelDir:   opts.ModelDir,
	}
}

// getAssembler builds the assembler on first use, loading the default
// normalizer when none was configured.
func (c *Cinegenre) getAssembler() (*dataset.Assembler, error) {
	c.assemblerOnce.Do(func() {
		n := c.normalizer
		if n == nil {
			n, c.assemblerErr = textnorm.NewEnglish()
			if c.assemblerErr != nil {
				c.assemblerErr = fmt.Errorf("%w: default normalizer: %v", internalerr.ErrInvalidConfig, c.assemblerErr)
				return
			}
		}
		c.assembler = dataset.NewAssembler(n, c.taxonomy)
	})
	return c.assembler, c.assemblerErr
}

// Close cleanly shuts down the instance
func (c *Cinegenre) Close() error {
	return c.store.Close()
}

// Prepare assembles the base and augmented corpora and stores both,
// replacing whatever a previous run stored.
func (c *Cinegenre) Prepare(ctx context.Context, primary dataset.Source, supplementary ...dataset.Source) (dataset.Corpora, error) {
	log := zerolog.Ctx(ctx)

	asm, err := c.getAssembler()
	if err != nil {
		return dataset.Corpora{}, err
	}
	corpora, err := asm.Build(primary, supplementary...)
	if err != nil {
		return dataset.Corpora{}, err
	}

	for _, variant := range []string{dataset.VariantBase, dataset.VariantAugmented} {
		rows, _ := corpora.Variant(variant)
		if err := c.store.ReplaceCorpus(ctx, variant, rows); err != nil {
			return dataset.Corpora{}, fmt.Errorf("store %s corpus: %w", variant, err)
		}
		log.Info().Str("variant", variant).Int("rows", len(rows)).Msg("corpus stored")
	}
	return corpora, nil
}

// TrainReport is the outcome of one training invocation
type TrainReport struct {
	Base         *train.Run
	Augmented    *train.Run
	Rows         []selection.Row
	Champion     *artifact.Champion
	ComparisonID string
	ReportPath   string
}

// Train evaluates both stored corpora, selects the champion and writes the
// champion files, the comparison report and the audit records. The previous
// champion stays in place when any step before the artifact write fails.
func (c *Cinegenre) Train(ctx context.Context) (*TrainReport, error) {
	log := zerolog.Ctx(ctx)
	if c.modelDir == "" {
		return nil, fmt.Errorf("%w: model directory not set", internalerr.ErrInvalidConfig)
	}

	report := &TrainReport{}
	runIDs := make(map[string]string, 2)

	for _, variant := range []string{dataset.VariantBase, dataset.VariantAugmented} {
		rows, err := c.store.Corpus(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("load %s corpus: %w", variant, err)
		}

		opts := c.training
		opts.Variant = variant

		started := time.Now()
		run, err := train.Evaluate(ctx, rows, opts)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", variant, err)
		}

		rec := store.NewRun(run, started)
		if err := c.store.SaveRun(ctx, rec); err != nil {
			return nil, fmt.Errorf("record %s run: %w", variant, err)
		}
		runIDs[variant] = rec.ID
		log.Info().
			Str("variant", variant).
			Str("run", rec.ID).
			Str("best", run.Best).
			Dur("elapsed", time.Since(started)).
			Msg("variant evaluated")

		if variant == dataset.VariantBase {
			report.Base = run
		} else {
			report.Augmented = run
		}
	}

	champion, rows, err := selection.SelectChampion(ctx, report.Base, report.Augmented)
	report.Rows = rows
	if err != nil {
		return report, err
	}
	report.Champion = champion

	if err := artifact.Save(c.modelDir, champion); err != nil {
		return report, fmt.Errorf("save champion: %w", err)
	}

	report.ReportPath = filepath.Join(c.modelDir, selection.ReportFile)
	if err := selection.WriteReport(report.ReportPath, rows); err != nil {
		return report, err
	}

	cmp := store.Comparison{
		ID:             store.NewID(),
		CreatedAt:      time.Now().UTC(),
		BaseRunID:      runIDs[dataset.VariantBase],
		AugmentedRunID: runIDs[dataset.VariantAugmented],
		Champion:       champion.Model,
		Rows:           rows,
	}
	if err := c.store.SaveComparison(ctx, cmp); err != nil {
		return report, fmt.Errorf("record comparison: %w", err)
	}
	report.ComparisonID = cmp.ID

	log.Info().
		Str("model", champion.Model).
		Float64("score", champion.Score).
		Str("dir", c.modelDir).
		Msg("champion saved")
	return report, nil
}

// Runs lists stored training runs, newest first.
func (c *Cinegenre) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	return c.store.ListRuns(ctx, limit)
}
