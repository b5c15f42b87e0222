package selection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/cognicore/cinegenre/pkg/cinegenre/artifact"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
)

// Provenance of the flexible score of a comparison row.
const (
	FlexSourceFlexible = "flexible"
	FlexSourceF1       = "f1"
	FlexSourceNone     = "none"
)

// Row compares one model family across the two dataset variants
type Row struct {
	Algorithm    string  `json:"algorithm"`
	StdAccBefore float64 `json:"std_acc_before"`
	StdAccAfter  float64 `json:"std_acc_after"`
	FlexAccAfter float64 `json:"flex_acc_after"`
	FlexSource   string  `json:"flex_source"`
}

// Compare builds one row per model present in either run, in roster order
// and then by name. The flexible score falls back to the augmented weighted
// F1 when no flexible accuracy was recorded.
func Compare(ctx context.Context, base, augmented *train.Run) []Row {
	log := zerolog.Ctx(ctx)

	names := modelNames(base, augmented)
	rows := make([]Row, 0, len(names))
	for _, name := range names {
		row := Row{Algorithm: name, FlexSource: FlexSourceNone}
		if res, ok := base.Result(name); ok {
			row.StdAccBefore = res.Accuracy
		}
		if res, ok := augmented.Result(name); ok {
			row.StdAccAfter = res.Accuracy
			if res.FlexibleAccuracy != nil {
				row.FlexAccAfter = *res.FlexibleAccuracy
				row.FlexSource = FlexSourceFlexible
			} else {
				row.FlexAccAfter = res.F1
				row.FlexSource = FlexSourceF1
				log.Warn().Str("model", name).Msg("no flexible accuracy recorded, scoring by weighted F1")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// SelectChampion compares both runs and returns the augmented estimator of
// the model with the highest flexible score. Ties keep the earlier row;
// models missing from the augmented run score 0 and cannot win.
func SelectChampion(ctx context.Context, base, augmented *train.Run) (*artifact.Champion, []Row, error) {
	rows := Compare(ctx, base, augmented)
	if len(rows) == 0 {
		return nil, rows, fmt.Errorf("%w: no results to compare", internalerr.ErrNoChampion)
	}

	best := -1
	var bestScore float64
	for i, r := range rows {
		if r.FlexAccAfter > bestScore {
			best, bestScore = i, r.FlexAccAfter
		}
	}
	if best < 0 {
		return nil, rows, fmt.Errorf("%w: every flexible score is zero", internalerr.ErrNoChampion)
	}

	name := rows[best].Algorithm
	est := augmented.Estimators[name]
	if est == nil {
		return nil, rows, fmt.Errorf("%w: no augmented estimator for %s", internalerr.ErrNoChampion, name)
	}

	zerolog.Ctx(ctx).Info().
		Str("model", name).
		Str("variant", augmented.Variant).
		Float64("score", bestScore).
		Str("source", rows[best].FlexSource).
		Msg("champion selected")

	return &artifact.Champion{
		Estimator:  est,
		Vectorizer: augmented.Vectorizer,
		Variant:    augmented.Variant,
		Model:      name,
		Score:      bestScore,
		Classes:    est.Classes(),
		Capability: model.CapabilityOf(est),
		TrainedAt:  time.Now().UTC(),
	}, rows, nil
}

func modelNames(runs ...*train.Run) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range runs {
		if r == nil {
			continue
		}
		for name := range r.Results {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		ri, rj := model.RosterRank(names[i]), model.RosterRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}
