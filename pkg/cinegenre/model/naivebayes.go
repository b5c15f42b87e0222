package model

import (
	"context"
	"math"

	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// NaiveBayes is a multinomial naive Bayes classifier with additive smoothing
type NaiveBayes struct {
	Alpha          float64     `json:"alpha"`
	Labels         []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// NewNaiveBayes creates an unfitted classifier with smoothing alpha.
func NewNaiveBayes(alpha float64) *NaiveBayes {
	return &NaiveBayes{Alpha: alpha}
}

func (nb *NaiveBayes) Kind() string { return KeyNaiveBayes }

func (nb *NaiveBayes) Classes() []string { return nb.Labels }

// Fit estimates class priors and smoothed per-class feature distributions.
func (nb *NaiveBayes) Fit(ctx context.Context, X Matrix, y []string) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	classes, codes := encodeLabels(y)
	k := len(classes)

	classCount := make([]float64, k)
	featureCount := make([][]float64, k)
	for c := range featureCount {
		featureCount[c] = make([]float64, X.Cols)
	}
	for i, row := range X.Rows {
		c := codes[i]
		classCount[c]++
		for n, j := range row.Indices {
			featureCount[c][j] += row.Values[n]
		}
	}

	nb.Labels = classes
	nb.ClassLogPrior = make([]float64, k)
	nb.FeatureLogProb = make([][]float64, k)
	for c := 0; c < k; c++ {
		nb.ClassLogPrior[c] = math.Log(classCount[c] / float64(len(y)))

		var total float64
		for _, v := range featureCount[c] {
			total += v + nb.Alpha
		}
		logTotal := math.Log(total)

		flp := make([]float64, X.Cols)
		for j, v := range featureCount[c] {
			flp[j] = math.Log(v+nb.Alpha) - logTotal
		}
		nb.FeatureLogProb[c] = flp
	}
	return nil
}

func (nb *NaiveBayes) jointLogLikelihood(x vectorize.Vector) []float64 {
	jll := make([]float64, len(nb.Labels))
	for c := range jll {
		jll[c] = nb.ClassLogPrior[c] + x.Dot(nb.FeatureLogProb[c])
	}
	return jll
}

func (nb *NaiveBayes) Predict(x vectorize.Vector) string {
	return nb.Labels[argmax(nb.jointLogLikelihood(x))]
}

// PredictProba normalizes the joint log likelihood.
func (nb *NaiveBayes) PredictProba(x vectorize.Vector) []float64 {
	return Softmax(nb.jointLogLikelihood(x))
}
