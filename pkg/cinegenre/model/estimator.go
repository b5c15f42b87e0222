package model

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// Matrix is a set of sparse rows over a fixed number of columns
type Matrix struct {
	Rows []vectorize.Vector
	Cols int
}

// Subset returns the rows at idx.
func (m Matrix) Subset(idx []int) Matrix {
	rows := make([]vectorize.Vector, len(idx))
	for i, j := range idx {
		rows[i] = m.Rows[j]
	}
	return Matrix{Rows: rows, Cols: m.Cols}
}

// Estimator is a multi-class classifier over sparse rows
type Estimator interface {
	Kind() string
	Fit(ctx context.Context, X Matrix, y []string) error
	Predict(x vectorize.Vector) string
	Classes() []string
}

// ProbabilityEstimator yields a probability per class, aligned with Classes.
type ProbabilityEstimator interface {
	Estimator
	PredictProba(x vectorize.Vector) []float64
}

// MarginEstimator yields an unbounded score per class, aligned with Classes.
type MarginEstimator interface {
	Estimator
	DecisionFunction(x vectorize.Vector) []float64
}

// Capability describes how probabilities are obtained from an estimator
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityMargin
	CapabilityProba
)

func (c Capability) String() string {
	switch c {
	case CapabilityProba:
		return "proba"
	case CapabilityMargin:
		return "margin"
	default:
		return "none"
	}
}

// CapabilityOf resolves the capability of e, preferring native probabilities.
func CapabilityOf(e Estimator) Capability {
	if _, ok := e.(ProbabilityEstimator); ok {
		return CapabilityProba
	}
	if _, ok := e.(MarginEstimator); ok {
		return CapabilityMargin
	}
	return CapabilityNone
}

// Probabilities returns the class distribution of x according to the
// capability of e. Margins go through a softmax; without either capability
// the result is nil.
func Probabilities(e Estimator, x vectorize.Vector) []float64 {
	switch est := e.(type) {
	case ProbabilityEstimator:
		return est.PredictProba(x)
	case MarginEstimator:
		return Softmax(est.DecisionFunction(x))
	default:
		return nil
	}
}

// Softmax maps scores to a distribution, shifting by the maximum first.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// encodeLabels returns the sorted distinct labels and the code of each y.
func encodeLabels(y []string) ([]string, []int) {
	seen := make(map[string]struct{})
	for _, l := range y {
		seen[l] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	pos := make(map[string]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	codes := make([]int, len(y))
	for i, l := range y {
		codes[i] = pos[l]
	}
	return classes, codes
}

// balancedWeights returns n / (k * count) per class code.
func balancedWeights(codes []int, k int) []float64 {
	counts := make([]int, k)
	for _, c := range codes {
		counts[c]++
	}
	w := make([]float64, k)
	for i, c := range counts {
		if c > 0 {
			w[i] = float64(len(codes)) / float64(k*c)
		}
	}
	return w
}

func checkFit(X Matrix, y []string) error {
	if len(X.Rows) == 0 {
		return fmt.Errorf("%w: no training rows", internalerr.ErrInvalidInput)
	}
	if len(X.Rows) != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", internalerr.ErrInvalidInput, len(X.Rows), len(y))
	}
	return nil
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
