package model

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// Estimator keys accepted in the training roster.
const (
	KeyNaiveBayes   = "naive_bayes"
	KeySVM          = "svm"
	KeyRandomForest = "random_forest"
	KeyLinearSVM    = "linear_svm"
)

// DefaultRoster is the evaluation order used when none is configured.
var DefaultRoster = []string{KeyNaiveBayes, KeySVM, KeyRandomForest}

// Maker creates an unfitted estimator with its training defaults.
type Maker func() Estimator

var makers = map[string]Maker{
	KeyNaiveBayes:   func() Estimator { return NewNaiveBayes(0.01) },
	KeySVM:          func() Estimator { return NewCalibratedSVM() },
	KeyRandomForest: func() Estimator { return NewRandomForest() },
	KeyLinearSVM:    func() Estimator { return NewLinearSVM() },
}

var displayNames = map[string]string{
	KeyNaiveBayes:   "Naive Bayes",
	KeySVM:          "SVM",
	KeyRandomForest: "Random Forest",
	KeyLinearSVM:    "Linear SVM",
}

// New returns an unfitted estimator for key.
func New(key string) (Estimator, error) {
	mk, ok := makers[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", internalerr.ErrInvalidConfig, key)
	}
	return mk(), nil
}

// Keys returns every registered key in display order.
func Keys() []string {
	return []string{KeyNaiveBayes, KeySVM, KeyRandomForest, KeyLinearSVM}
}

// DisplayName returns the report name of key, or key itself if unknown.
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	return key
}

// RosterRank orders report names by their position in Keys; unknown names
// sort after every known one.
func RosterRank(name string) int {
	for i, k := range Keys() {
		if displayNames[k] == name {
			return i
		}
	}
	return len(Keys())
}

// ValidateRoster checks that every key is registered and listed once.
func ValidateRoster(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty model roster", internalerr.ErrInvalidConfig)
	}
	for i, k := range keys {
		if _, ok := makers[k]; !ok {
			return fmt.Errorf("%w: unknown model %q", internalerr.ErrInvalidConfig, k)
		}
		if slices.Contains(keys[:i], k) {
			return fmt.Errorf("%w: model %q listed twice", internalerr.ErrInvalidConfig, k)
		}
	}
	return nil
}

type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Marshal encodes a fitted estimator together with its kind.
func Marshal(e Estimator) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Kind(), err)
	}
	return json.Marshal(envelope{Kind: e.Kind(), Payload: payload})
}

// Unmarshal decodes an estimator written by Marshal.
func Unmarshal(data []byte) (Estimator, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode estimator: %w", err)
	}

	e, err := New(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Payload, e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	if len(e.Classes()) == 0 {
		return nil, fmt.Errorf("%w: %s estimator has no classes", internalerr.ErrInvalidInput, env.Kind)
	}
	return e, nil
}
