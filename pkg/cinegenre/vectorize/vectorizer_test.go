package vectorize

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

var corpus = []string{
	"space ship crew",
	"space ship war",
	"space war hero",
	"hero",
}

func TestTokenize(t *testing.T) {
	got := tokenize("A lone Hero, 2 ships & x-ray_vision!")
	want := []string{"lone", "hero", "ships", "ray_vision"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize = %v, want %v", got, want)
	}
}

func TestTermsBigrams(t *testing.T) {
	got := terms([]string{"a1", "b2", "c3"}, 2)
	want := []string{"a1", "b2", "c3", "a1 b2", "b2 c3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestFitVocabulary(t *testing.T) {
	v, err := Fit(corpus, Options{MinDF: 2, NGramMax: 2, Sublinear: true})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	want := []string{"hero", "ship", "space", "space ship", "war"}
	if !reflect.DeepEqual(v.Terms(), want) {
		t.Errorf("Terms = %v, want %v", v.Terms(), want)
	}

	j, _ := v.Index("space")
	if got, want := v.idf[j], math.Log(5.0/4.0)+1; math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(space) = %f, want %f", got, want)
	}
}

func TestFitMaxFeatures(t *testing.T) {
	v, err := Fit(corpus, Options{MinDF: 2, MaxFeatures: 2, NGramMax: 2})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// space is the most frequent term, hero wins the tie alphabetically
	if !reflect.DeepEqual(v.Terms(), []string{"hero", "space"}) {
		t.Errorf("Terms = %v", v.Terms())
	}
}

func TestFitNoTerms(t *testing.T) {
	_, err := Fit(corpus, Options{MinDF: 10})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	_, err = Fit(nil, DefaultOptions())
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty corpus, got %v", err)
	}
}

func TestTransformNormalized(t *testing.T) {
	v, err := Fit(corpus, Options{MinDF: 2, NGramMax: 2, Sublinear: true})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	vec := v.TransformOne("space ship war space")
	var norm float64
	for _, x := range vec.Values {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("Expected unit norm, got %f", norm)
	}

	for k := 1; k < len(vec.Indices); k++ {
		if vec.Indices[k] <= vec.Indices[k-1] {
			t.Fatalf("Indices not ascending: %v", vec.Indices)
		}
	}

	single := v.TransformOne("space space unknown")
	j, _ := v.Index("space")
	if single.Len() != 1 || single.Indices[0] != j || math.Abs(single.Values[0]-1) > 1e-12 {
		t.Errorf("Unexpected single-term vector %+v", single)
	}

	if got := v.TransformOne("nothing known here"); got.Len() != 0 {
		t.Errorf("Expected empty vector, got %+v", got)
	}
}

func TestSublinearWeighting(t *testing.T) {
	v, err := Fit(corpus, Options{MinDF: 2, NGramMax: 1, Sublinear: true})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	vec := v.TransformOne("space space hero")
	si, _ := v.Index("space")
	hi, _ := v.Index("hero")
	ratio := vec.At(si) / vec.At(hi)
	want := (1 + math.Log(2)) * v.idf[si] / v.idf[hi]
	if math.Abs(ratio-want) > 1e-9 {
		t.Errorf("ratio = %f, want %f", ratio, want)
	}
}

func TestVectorDot(t *testing.T) {
	vec := Vector{Indices: []int{0, 2}, Values: []float64{2, 3}}
	if got := vec.Dot([]float64{1, 10, 100}); got != 302 {
		t.Errorf("Dot = %f, want 302", got)
	}
	if vec.At(1) != 0 || vec.At(2) != 3 {
		t.Errorf("At lookup wrong")
	}
}

func TestJSONRestore(t *testing.T) {
	v, err := Fit(corpus, Options{MinDF: 2, NGramMax: 2, Sublinear: true})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored Vectorizer
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	text := "space ship hero war"
	if !reflect.DeepEqual(v.TransformOne(text), restored.TransformOne(text)) {
		t.Errorf("Restored vectorizer transforms differently")
	}

	if err := json.Unmarshal([]byte(`{"terms":["a"],"idf":[]}`), &restored); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for mismatched state, got %v", err)
	}
}
