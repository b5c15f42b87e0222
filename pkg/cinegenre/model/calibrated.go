package model

import (
	"context"
	"fmt"
	"math"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/metrics"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// CalibratedSVM wraps LinearSVM with per-class sigmoid calibration. Each of
// Folds stratified folds trains a member on the remaining folds and fits the
// sigmoids on its own held-out fold; probabilities are averaged over members.
type CalibratedSVM struct {
	Folds int       `json:"folds"`
	Base  LinearSVM `json:"base"`

	Labels  []string           `json:"classes"`
	Members []CalibratedMember `json:"members"`
}

// CalibratedMember is one fold's classifier and its sigmoid parameters,
// aligned with the classifier's classes.
type CalibratedMember struct {
	SVM *LinearSVM `json:"svm"`
	A   []float64  `json:"a"`
	B   []float64  `json:"b"`
}

// NewCalibratedSVM creates an unfitted classifier with five folds.
func NewCalibratedSVM() *CalibratedSVM {
	return &CalibratedSVM{
		Folds: 5,
		Base:  *NewLinearSVM(),
	}
}

func (c *CalibratedSVM) Kind() string { return KeySVM }

func (c *CalibratedSVM) Classes() []string { return c.Labels }

func (c *CalibratedSVM) Fit(ctx context.Context, X Matrix, y []string) error {
	if err := checkFit(X, y); err != nil {
		return err
	}

	folds, err := metrics.StratifiedKFold(y, c.Folds)
	if err != nil {
		return fmt.Errorf("calibration folds: %w", err)
	}

	classes, _ := encodeLabels(y)
	members := make([]CalibratedMember, 0, len(folds))
	for _, test := range folds {
		if err := ctx.Err(); err != nil {
			return err
		}

		train := metrics.Complement(len(y), test)
		trainY := pick(y, train)

		svm := c.Base
		svm.Labels, svm.Weights = nil, nil
		if err := svm.Fit(ctx, X.Subset(train), trainY); err != nil {
			return err
		}

		member := CalibratedMember{
			SVM: &svm,
			A:   make([]float64, len(svm.Labels)),
			B:   make([]float64, len(svm.Labels)),
		}

		scores := make([][]float64, len(test))
		for i, j := range test {
			scores[i] = svm.DecisionFunction(X.Rows[j])
		}
		for k, label := range svm.Labels {
			f := make([]float64, len(test))
			positive := make([]bool, len(test))
			for i, j := range test {
				f[i] = scores[i][k]
				positive[i] = y[j] == label
			}
			member.A[k], member.B[k] = fitSigmoid(f, positive)
		}
		members = append(members, member)
	}

	if len(members) == 0 {
		return fmt.Errorf("%w: no calibration folds", internalerr.ErrInvalidInput)
	}

	c.Labels = classes
	c.Members = members
	return nil
}

// PredictProba averages the normalized sigmoid outputs of every member.
func (c *CalibratedSVM) PredictProba(x vectorize.Vector) []float64 {
	pos := make(map[string]int, len(c.Labels))
	for i, l := range c.Labels {
		pos[l] = i
	}

	out := make([]float64, len(c.Labels))
	for _, m := range c.Members {
		proba := make([]float64, len(c.Labels))
		var sum float64
		for k, f := range m.SVM.DecisionFunction(x) {
			p := sigmoid(m.A[k]*f + m.B[k])
			proba[pos[m.SVM.Labels[k]]] = p
			sum += p
		}
		for i := range proba {
			if sum > 0 {
				proba[i] /= sum
			} else {
				proba[i] = 1 / float64(len(proba))
			}
			out[i] += proba[i]
		}
	}

	for i := range out {
		out[i] /= float64(len(c.Members))
	}
	return out
}

func (c *CalibratedSVM) Predict(x vectorize.Vector) string {
	return c.Labels[argmax(c.PredictProba(x))]
}

// sigmoid returns 1 / (1 + exp(t)) without overflow.
func sigmoid(t float64) float64 {
	if t >= 0 {
		e := math.Exp(-t)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(t))
}

// fitSigmoid fits P(positive | f) = 1 / (1 + exp(A*f + B)) by Newton's method
// with backtracking on regularized targets.
func fitSigmoid(f []float64, positive []bool) (float64, float64) {
	var prior1, prior0 float64
	for _, p := range positive {
		if p {
			prior1++
		} else {
			prior0++
		}
	}

	hi := (prior1 + 1) / (prior1 + 2)
	lo := 1 / (prior0 + 2)
	t := make([]float64, len(f))
	for i, p := range positive {
		if p {
			t[i] = hi
		} else {
			t[i] = lo
		}
	}

	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
		eps     = 1e-5
	)

	objective := func(a, b float64) float64 {
		var v float64
		for i := range f {
			z := f[i]*a + b
			if z >= 0 {
				v += t[i]*z + math.Log1p(math.Exp(-z))
			} else {
				v += (t[i]-1)*z + math.Log1p(math.Exp(z))
			}
		}
		return v
	}

	a, b := 0.0, math.Log((prior0+1)/(prior1+1))
	fval := objective(a, b)

	for iter := 0; iter < maxIter; iter++ {
		h11, h22, h21 := sigma, sigma, 0.0
		g1, g2 := 0.0, 0.0
		for i := range f {
			z := f[i]*a + b
			var p, q float64
			if z >= 0 {
				e := math.Exp(-z)
				p, q = e/(1+e), 1/(1+e)
			} else {
				e := math.Exp(z)
				p, q = 1/(1+e), e/(1+e)
			}
			d2 := p * q
			h11 += f[i] * f[i] * d2
			h22 += d2
			h21 += f[i] * d2
			d1 := t[i] - p
			g1 += f[i] * d1
			g2 += d1
		}

		if math.Abs(g1) < eps && math.Abs(g2) < eps {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for step >= minStep {
			na, nb := a+step*dA, b+step*dB
			nf := objective(na, nb)
			if nf < fval+1e-4*step*gd {
				a, b, fval = na, nb, nf
				break
			}
			step /= 2
		}
		if step < minStep {
			break
		}
	}
	return a, b
}

func pick(y []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
