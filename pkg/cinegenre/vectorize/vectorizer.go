package vectorize

import (
	"fmt"
	"math"
	"sort"

	"github.com/goccy/go-json"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// Options controls vocabulary selection and weighting
type Options struct {
	MinDF       int  `json:"min_df" yaml:"min_df" koanf:"min_df"`
	MaxFeatures int  `json:"max_features" yaml:"max_features" koanf:"max_features"`
	NGramMax    int  `json:"ngram_max" yaml:"ngram_max" koanf:"ngram_max"`
	Sublinear   bool `json:"sublinear_tf" yaml:"sublinear_tf" koanf:"sublinear_tf"`
}

// DefaultOptions returns the training defaults: unigrams and bigrams seen in
// at least 3 documents, at most 10000 features, sub-linear term frequency.
func DefaultOptions() Options {
	return Options{
		MinDF:       3,
		MaxFeatures: 10000,
		NGramMax:    2,
		Sublinear:   true,
	}
}

// Vector is a sparse row with indices in ascending order.
type Vector struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

// Len returns the number of stored entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// At returns the value at feature index j.
func (v Vector) At(j int) float64 {
	k := sort.SearchInts(v.Indices, j)
	if k < len(v.Indices) && v.Indices[k] == j {
		return v.Values[k]
	}
	return 0
}

// Dot returns the inner product with a dense weight slice.
func (v Vector) Dot(w []float64) float64 {
	var s float64
	for k, j := range v.Indices {
		if j < len(w) {
			s += v.Values[k] * w[j]
		}
	}
	return s
}

// Vectorizer is a fitted TF-IDF transform with a fixed vocabulary
type Vectorizer struct {
	opts  Options
	terms []string
	vocab map[string]int
	idf   []float64
	docs  int
}

// Fit learns the vocabulary and idf weights from texts.
func Fit(texts []string, opts Options) (*Vectorizer, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no documents to fit", internalerr.ErrInvalidInput)
	}

	c := newCounter()
	for _, t := range texts {
		c.addDocument(terms(tokenize(t), opts.NGramMax))
	}

	minDF := opts.MinDF
	if minDF < 1 {
		minDF = 1
	}

	kept := make([]string, 0, len(c.df))
	for t, df := range c.df {
		if df >= minDF {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no terms remain after min_df=%d", internalerr.ErrInvalidInput, minDF)
	}

	if opts.MaxFeatures > 0 && len(kept) > opts.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if c.tf[kept[i]] != c.tf[kept[j]] {
				return c.tf[kept[i]] > c.tf[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:opts.MaxFeatures]
	}
	sort.Strings(kept)

	v := &Vectorizer{
		opts:  opts,
		terms: kept,
		idf:   make([]float64, len(kept)),
		docs:  c.n,
	}
	for i, t := range kept {
		v.idf[i] = math.Log(float64(1+c.n)/float64(1+c.df[t])) + 1
	}
	v.buildVocab()

	return v, nil
}

func (v *Vectorizer) buildVocab() {
	v.vocab = make(map[string]int, len(v.terms))
	for i, t := range v.terms {
		v.vocab[t] = i
	}
}

// Dim returns the number of features.
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Terms returns the vocabulary in feature order.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the feature index of term.
func (v *Vectorizer) Index(term string) (int, bool) {
	i, ok := v.vocab[term]
	return i, ok
}

// Options returns the options the vectorizer was fitted with.
func (v *Vectorizer) Options() Options {
	return v.opts
}

// Transform maps each text onto the fitted vocabulary.
func (v *Vectorizer) Transform(texts []string) []Vector {
	out := make([]Vector, len(texts))
	for i, t := range texts {
		out[i] = v.TransformOne(t)
	}
	return out
}

// TransformOne maps one text onto the fitted vocabulary. Out-of-vocabulary
// terms are ignored, so the result may be empty.
func (v *Vectorizer) TransformOne(text string) Vector {
	counts := make(map[int]int)
	for _, t := range terms(tokenize(text), v.opts.NGramMax) {
		if j, ok := v.vocab[t]; ok {
			counts[j]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	idx := make([]int, 0, len(counts))
	for j := range counts {
		idx = append(idx, j)
	}
	sort.Ints(idx)

	vals := make([]float64, len(idx))
	var norm float64
	for k, j := range idx {
		tf := float64(counts[j])
		if v.opts.Sublinear {
			tf = 1 + math.Log(tf)
		}
		vals[k] = tf * v.idf[j]
		norm += vals[k] * vals[k]
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vals {
			vals[k] /= norm
		}
	}

	return Vector{Indices: idx, Values: vals}
}

type snapshot struct {
	Options Options   `json:"options"`
	Terms   []string  `json:"terms"`
	IDF     []float64 `json:"idf"`
	Docs    int       `json:"docs"`
}

// MarshalJSON encodes the fitted state.
func (v *Vectorizer) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		Options: v.opts,
		Terms:   v.terms,
		IDF:     v.idf,
		Docs:    v.docs,
	})
}

// UnmarshalJSON restores a fitted vectorizer.
func (v *Vectorizer) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s.Terms) != len(s.IDF) {
		return fmt.Errorf("%w: %d terms but %d idf weights", internalerr.ErrInvalidInput, len(s.Terms), len(s.IDF))
	}

	v.opts = s.Options
	v.terms = s.Terms
	v.idf = s.IDF
	v.docs = s.Docs
	v.buildVocab()
	return nil
}
