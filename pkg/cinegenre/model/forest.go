package model

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// RandomForest is a bagged ensemble of gini decision trees. Each tree
// samples sqrt(features) candidates per split and sees a bootstrap draw of
// the rows; class weights are computed once on the full label set.
type RandomForest struct {
	NTrees   int    `json:"n_trees"`
	Balanced bool   `json:"balanced"`
	Seed     uint64 `json:"seed"`
	Workers  int    `json:"-"`

	Labels []string `json:"classes"`
	Trees  []*Tree  `json:"trees"`
}

// NewRandomForest creates an unfitted forest with the training defaults.
func NewRandomForest() *RandomForest {
	return &RandomForest{
		NTrees:   200,
		Balanced: true,
		Seed:     42,
	}
}

func (f *RandomForest) Kind() string { return KeyRandomForest }

func (f *RandomForest) Classes() []string { return f.Labels }

// Fit grows the trees on a bounded worker pool. Tree i draws from its own
// generator seeded with (Seed, i), so the forest does not depend on
// scheduling.
func (f *RandomForest) Fit(ctx context.Context, X Matrix, y []string) error {
	if err := checkFit(X, y); err != nil {
		return err
	}

	classes, codes := encodeLabels(y)
	cw := make([]float64, len(classes))
	for i := range cw {
		cw[i] = 1
	}
	if f.Balanced {
		cw = balancedWeights(codes, len(classes))
	}

	mtry := int(math.Sqrt(float64(X.Cols)))
	if mtry < 1 {
		mtry = 1
	}

	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cols := toColumns(X)
	n := len(X.Rows)
	trees := make([]*Tree, f.NTrees)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(f.Seed, uint64(i)))

			draws := make([]int, n)
			for k := 0; k < n; k++ {
				draws[rng.IntN(n)]++
			}

			weights := make([]float64, n)
			samples := make([]int, 0, n)
			for r, d := range draws {
				if d == 0 {
					continue
				}
				weights[r] = float64(d) * cw[codes[r]]
				samples = append(samples, r)
			}

			b := newTreeBuilder(cols, codes, weights, len(classes), mtry, rng)
			b.build(samples)
			trees[i] = b.tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.Labels = classes
	f.Trees = trees
	return nil
}

// PredictProba averages the leaf distributions of all trees.
func (f *RandomForest) PredictProba(x vectorize.Vector) []float64 {
	out := make([]float64, len(f.Labels))
	if len(f.Trees) == 0 {
		return out
	}
	for _, t := range f.Trees {
		for c, p := range t.Proba(x) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(f.Trees))
	}
	return out
}

func (f *RandomForest) Predict(x vectorize.Vector) string {
	return f.Labels[argmax(f.PredictProba(x))]
}
