package train

import (
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// Result holds the held-out metrics of one model family
type Result struct {
	Model        string  `json:"model"`
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`
	ROCAUC       float64 `json:"roc_auc"`
	ValidationF1 float64 `json:"validation_f1"`

	// FlexibleAccuracy is set only when some held-out row lists more than
	// one raw label.
	FlexibleAccuracy *float64 `json:"flexible_accuracy,omitempty"`
}

// Run is the outcome of evaluating every roster model on one variant
type Run struct {
	Variant    string
	Rows       int
	Classes    []string
	Removed    []string // groups dropped for insufficient support
	Order      []string // model names in evaluation order
	Results    map[string]Result
	Estimators map[string]model.Estimator
	Vectorizer *vectorize.Vectorizer
	Best       string // model with the highest held-out F1
}

// Result returns the result recorded for name.
func (r *Run) Result(name string) (Result, bool) {
	if r == nil {
		return Result{}, false
	}
	res, ok := r.Results[name]
	return res, ok
}

// Ordered returns the results in evaluation order.
func (r *Run) Ordered() []Result {
	out := make([]Result, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, r.Results[name])
	}
	return out
}
