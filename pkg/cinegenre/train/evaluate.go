package train

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/metrics"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// Evaluate drops undersized groups, splits rows into stratified train and
// held-out partitions, fits the vectorizer on the train partition and then
// cross-validates, fits and scores every roster model in order.
func Evaluate(ctx context.Context, rows []dataset.Row, opts Options) (*Run, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx).With().Str("variant", opts.Variant).Logger()

	kept, removed := dataset.FilterMinSupport(rows, opts.MinSupport)
	if len(removed) > 0 {
		log.Info().Strs("groups", removed).Int("min_support", opts.MinSupport).Msg("dropping undersized groups")
	}

	classes := dataset.Classes(kept)
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: %d usable groups in %s corpus", internalerr.ErrInvalidInput, len(classes), opts.Variant)
	}

	y := dataset.Groups(kept)
	trainIdx, testIdx, err := metrics.StratifiedSplit(y, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("split %s corpus: %w", opts.Variant, err)
	}

	trainRows := pickRows(kept, trainIdx)
	testRows := pickRows(kept, testIdx)
	yTrain := dataset.Groups(trainRows)
	yTest := dataset.Groups(testRows)

	vec, err := vectorize.Fit(dataset.Texts(trainRows), opts.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}
	xTrain := model.Matrix{Rows: vec.Transform(dataset.Texts(trainRows)), Cols: vec.Dim()}
	xTest := model.Matrix{Rows: vec.Transform(dataset.Texts(testRows)), Cols: vec.Dim()}

	log.Info().
		Int("rows", len(kept)).
		Int("train", len(trainRows)).
		Int("test", len(testRows)).
		Int("features", vec.Dim()).
		Msg("corpus prepared")

	run := &Run{
		Variant:    opts.Variant,
		Rows:       len(kept),
		Classes:    classes,
		Removed:    removed,
		Results:    make(map[string]Result, len(opts.Models)),
		Estimators: make(map[string]model.Estimator, len(opts.Models)),
		Vectorizer: vec,
	}

	bestF1 := -1.0
	for _, key := range opts.Models {
		name := model.DisplayName(key)
		mlog := log.With().Str("model", name).Logger()
		mlog.Info().Msg("training")

		valF1, err := crossValidate(ctx, key, xTrain, yTrain, opts.Folds)
		if err != nil {
			return nil, fmt.Errorf("cross-validate %s: %w", name, err)
		}

		est, err := model.New(key)
		if err != nil {
			return nil, err
		}
		if err := est.Fit(ctx, xTrain, yTrain); err != nil {
			return nil, fmt.Errorf("fit %s: %w", name, err)
		}

		preds, proba := predictAll(est, xTest)
		res := Result{Model: name, ValidationF1: valF1}
		res.Accuracy = metrics.Accuracy(yTest, preds)
		res.Precision, res.Recall, res.F1 = metrics.Weighted(yTest, preds)
		if proba != nil {
			res.ROCAUC = metrics.ROCAUC(yTest, classes, est.Classes(), proba)
		}
		if flex, ok := FlexibleAccuracy(testRows, preds, opts.Taxonomy); ok {
			res.FlexibleAccuracy = &flex
		}

		run.Order = append(run.Order, name)
		run.Results[name] = res
		run.Estimators[name] = est

		ev := Evaluation{
			Variant:   opts.Variant,
			Model:     name,
			Labels:    classes,
			Confusion: metrics.ConfusionMatrix(yTest, preds, classes),
			ROC:       rocCurves(yTest, est.Classes(), proba),
			Report:    metrics.Report(yTest, preds),
		}
		if opts.Reporter != nil {
			if err := opts.Reporter.Report(ctx, ev); err != nil {
				mlog.Warn().Err(err).Msg("writing evaluation outputs failed")
			}
		}

		e := mlog.Info().
			Float64("accuracy", res.Accuracy).
			Float64("f1", res.F1).
			Float64("validation_f1", res.ValidationF1).
			Float64("roc_auc", res.ROCAUC)
		if res.FlexibleAccuracy != nil {
			e = e.Float64("flexible_accuracy", *res.FlexibleAccuracy)
		}
		e.Msg("evaluated")
		mlog.Debug().Msg("classification report\n" + ev.Report)

		if res.F1 > bestF1 {
			bestF1 = res.F1
			run.Best = name
		}
	}

	return run, nil
}

// crossValidate returns the mean weighted F1 over stratified folds of the
// training partition.
func crossValidate(ctx context.Context, key string, X model.Matrix, y []string, folds int) (float64, error) {
	if folds < 2 {
		return 0, nil
	}

	splits, err := metrics.StratifiedKFold(y, folds)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, test := range splits {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		train := metrics.Complement(len(y), test)

		est, err := model.New(key)
		if err != nil {
			return 0, err
		}
		if err := est.Fit(ctx, X.Subset(train), pickLabels(y, train)); err != nil {
			return 0, err
		}

		preds, _ := predictAll(est, X.Subset(test))
		total += metrics.WeightedF1(pickLabels(y, test), preds)
	}
	return total / float64(len(splits)), nil
}

// predictAll returns the predicted labels and, for estimators with native
// probabilities, the probability rows.
func predictAll(est model.Estimator, X model.Matrix) ([]string, [][]float64) {
	preds := make([]string, len(X.Rows))
	for i, x := range X.Rows {
		preds[i] = est.Predict(x)
	}

	pe, ok := est.(model.ProbabilityEstimator)
	if !ok {
		return preds, nil
	}
	proba := make([][]float64, len(X.Rows))
	for i, x := range X.Rows {
		proba[i] = pe.PredictProba(x)
	}
	return preds, proba
}

func rocCurves(yTrue, classes []string, proba [][]float64) map[string][]metrics.ROCPoint {
	if len(proba) == 0 {
		return nil
	}

	sorted := append([]string(nil), classes...)
	sort.Strings(sorted)
	col := make(map[string]int, len(classes))
	for i, c := range classes {
		col[c] = i
	}

	out := make(map[string][]metrics.ROCPoint, len(classes))
	for _, c := range sorted {
		positive := make([]bool, len(yTrue))
		scores := make([]float64, len(yTrue))
		for i := range yTrue {
			positive[i] = yTrue[i] == c
			scores[i] = proba[i][col[c]]
		}
		out[c] = metrics.ROCCurve(positive, scores)
	}
	return out
}

func pickRows(rows []dataset.Row, idx []int) []dataset.Row {
	out := make([]dataset.Row, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func pickLabels(y []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
