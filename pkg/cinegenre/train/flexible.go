package train

import (
	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
)

// FlexibleAccuracy counts a prediction as correct when it matches the row's
// group or the group of any raw label listed for the row. ok is false when
// no row lists more than one label, since the score would then equal plain
// accuracy.
func FlexibleAccuracy(rows []dataset.Row, preds []string, tax *taxonomy.Taxonomy) (score float64, ok bool) {
	if len(rows) == 0 || len(rows) != len(preds) {
		return 0, false
	}

	multi := false
	hits := 0
	for i, r := range rows {
		if len(r.AllLabels) > 1 {
			multi = true
		}
		if preds[i] == r.Group || acceptedBy(r.AllLabels, preds[i], tax) {
			hits++
		}
	}

	if !multi {
		return 0, false
	}
	return float64(hits) / float64(len(rows)), true
}

func acceptedBy(labels []string, pred string, tax *taxonomy.Taxonomy) bool {
	if tax == nil {
		return false
	}
	for _, l := range labels {
		if tax.Map(l) == pred {
			return true
		}
	}
	return false
}
