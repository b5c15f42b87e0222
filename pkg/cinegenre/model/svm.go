package model

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// LinearSVM is a one-vs-rest linear support vector classifier trained on the
// squared hinge loss with dual coordinate descent. The intercept is learned
// as the weight of a constant feature and is regularized with the rest.
type LinearSVM struct {
	C        float64 `json:"c"`
	Balanced bool    `json:"balanced"`
	Tol      float64 `json:"tol"`
	MaxIter  int     `json:"max_iter"`
	Seed     uint64  `json:"seed"`

	Labels []string `json:"classes"`
	// Weights holds one row per class; the last entry is the intercept.
	Weights [][]float64 `json:"weights"`
}

// NewLinearSVM creates an unfitted classifier with the training defaults.
func NewLinearSVM() *LinearSVM {
	return &LinearSVM{
		C:        1,
		Balanced: true,
		Tol:      1e-4,
		MaxIter:  1000,
		Seed:     42,
	}
}

func (s *LinearSVM) Kind() string { return KeyLinearSVM }

func (s *LinearSVM) Classes() []string { return s.Labels }

// Fit trains one binary problem per class. With balanced weights the
// positive class of each problem is weighted by n / (k * count).
func (s *LinearSVM) Fit(ctx context.Context, X Matrix, y []string) error {
	if err := checkFit(X, y); err != nil {
		return err
	}

	classes, codes := encodeLabels(y)
	cw := make([]float64, len(classes))
	for i := range cw {
		cw[i] = 1
	}
	if s.Balanced {
		cw = balancedWeights(codes, len(classes))
	}

	sqNorm := make([]float64, len(X.Rows))
	for i, row := range X.Rows {
		for _, v := range row.Values {
			sqNorm[i] += v * v
		}
		sqNorm[i]++ // intercept feature
	}

	weights := make([][]float64, len(classes))
	for c := range classes {
		if err := ctx.Err(); err != nil {
			return err
		}
		pos := make([]bool, len(codes))
		for i, code := range codes {
			pos[i] = code == c
		}
		rng := rand.New(rand.NewPCG(s.Seed, uint64(c)))
		weights[c] = s.solve(ctx, X, sqNorm, pos, s.C*cw[c], s.C, rng)
	}

	s.Labels = classes
	s.Weights = weights
	return nil
}

// solve runs dual coordinate descent for one binary problem with per-sample
// cost cp for positives and cn for negatives.
func (s *LinearSVM) solve(ctx context.Context, X Matrix, sqNorm []float64, pos []bool, cp, cn float64, rng *rand.Rand) []float64 {
	n := len(X.Rows)
	bias := X.Cols
	w := make([]float64, X.Cols+1)
	alpha := make([]float64, n)

	diag := make([]float64, n)
	qd := make([]float64, n)
	for i := range diag {
		c := cn
		if pos[i] {
			c = cp
		}
		diag[i] = 0.5 / c
		qd[i] = sqNorm[i] + diag[i]
	}

	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for iter := 0; iter < maxIter; iter++ {
		if ctx.Err() != nil {
			break
		}
		rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })

		maxPG, minPG := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			yi := -1.0
			if pos[i] {
				yi = 1
			}
			row := X.Rows[i]

			g := yi*(row.Dot(w)+w[bias]) - 1 + alpha[i]*diag[i]
			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)

			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				alpha[i] = math.Max(alpha[i]-g/qd[i], 0)
				d := (alpha[i] - old) * yi
				for k, j := range row.Indices {
					w[j] += d * row.Values[k]
				}
				w[bias] += d
			}
		}

		if maxPG-minPG <= s.Tol {
			break
		}
	}
	return w
}

// DecisionFunction returns the signed distance to each class hyperplane.
func (s *LinearSVM) DecisionFunction(x vectorize.Vector) []float64 {
	out := make([]float64, len(s.Weights))
	for c, w := range s.Weights {
		out[c] = x.Dot(w[:len(w)-1]) + w[len(w)-1]
	}
	return out
}

func (s *LinearSVM) Predict(x vectorize.Vector) string {
	return s.Labels[argmax(s.DecisionFunction(x))]
}
