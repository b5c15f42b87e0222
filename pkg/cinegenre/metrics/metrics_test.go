package metrics

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccuracyAndWeighted(t *testing.T) {
	yTrue := []string{"a", "b", "c", "a"}
	yPred := []string{"a", "b", "b", "a"}

	if got := Accuracy(yTrue, yPred); !approx(got, 0.75) {
		t.Errorf("Accuracy = %f, want 0.75", got)
	}

	p, r, f := Weighted(yTrue, yPred)
	if !approx(p, 0.625) {
		t.Errorf("precision = %f, want 0.625", p)
	}
	if !approx(r, 0.75) {
		t.Errorf("recall = %f, want 0.75", r)
	}
	if !approx(f, (2+2.0/3.0)/4) {
		t.Errorf("f1 = %f", f)
	}

	if Accuracy(nil, nil) != 0 || WeightedF1(nil, nil) != 0 {
		t.Errorf("Empty input should score 0")
	}
}

func TestPerClassZeroDivision(t *testing.T) {
	scores := PerClass([]string{"a", "c"}, []string{"a", "a"})
	for _, s := range scores {
		if s.Label == "c" && (s.Precision != 0 || s.Recall != 0 || s.F1 != 0) {
			t.Errorf("Unpredicted class should score 0, got %+v", s)
		}
	}
}

func TestConfusionMatrix(t *testing.T) {
	m := ConfusionMatrix(
		[]string{"a", "b", "b", "c"},
		[]string{"a", "a", "b", "x"},
		[]string{"a", "b", "c"},
	)
	want := [][]int{{1, 0, 0}, {1, 1, 0}, {0, 0, 0}}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("ConfusionMatrix = %v, want %v", m, want)
	}
}

func TestReport(t *testing.T) {
	out := Report([]string{"a", "b"}, []string{"a", "a"})
	for _, want := range []string{"precision", "accuracy", "macro avg", "weighted avg"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}

func TestBinaryAUC(t *testing.T) {
	auc, ok := BinaryAUC([]bool{false, false, true, true}, []float64{0.1, 0.4, 0.35, 0.8})
	if !ok || !approx(auc, 0.75) {
		t.Errorf("AUC = %f, want 0.75", auc)
	}

	auc, _ = BinaryAUC([]bool{false, true}, []float64{0.5, 0.5})
	if !approx(auc, 0.5) {
		t.Errorf("Tied AUC = %f, want 0.5", auc)
	}

	if _, ok := BinaryAUC([]bool{true, true}, []float64{0.1, 0.2}); ok {
		t.Errorf("Single-class AUC should not be defined")
	}
}

func TestROCCurve(t *testing.T) {
	pts := ROCCurve([]bool{false, false, true, true}, []float64{0.1, 0.4, 0.35, 0.8})
	first, last := pts[0], pts[len(pts)-1]
	if first.FPR != 0 || first.TPR != 0 {
		t.Errorf("Curve should start at origin, got %+v", first)
	}
	if last.FPR != 1 || last.TPR != 1 {
		t.Errorf("Curve should end at (1,1), got %+v", last)
	}
	if first.Threshold <= 0.8 {
		t.Errorf("First threshold should exceed every score, got %f", first.Threshold)
	}
}

func TestROCAUC(t *testing.T) {
	classes := []string{"a", "b", "c"}
	yTrue := []string{"a", "b", "c", "a"}
	perfect := [][]float64{
		{0.8, 0.1, 0.1},
		{0.1, 0.8, 0.1},
		{0.1, 0.1, 0.8},
		{0.7, 0.2, 0.1},
	}

	if got := ROCAUC(yTrue, classes, classes, perfect); !approx(got, 1) {
		t.Errorf("ROCAUC = %f, want 1", got)
	}

	tests := []struct {
		name         string
		yTrue        []string
		classes      []string
		probaClasses []string
		proba        [][]float64
	}{
		{"two classes binarize to one column", []string{"a", "b"}, []string{"a", "b"}, []string{"a", "b"}, [][]float64{{0.9, 0.1}, {0.1, 0.9}}},
		{"column count mismatch", yTrue, classes, []string{"a", "b"}, [][]float64{{1, 0}, {0, 1}, {1, 0}, {1, 0}}},
		{"class absent from held-out set", []string{"a", "b", "a"}, classes, classes, perfect[:3]},
		{"no scores", yTrue, classes, classes, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ROCAUC(tt.yTrue, tt.classes, tt.probaClasses, tt.proba); got != 0 {
				t.Errorf("ROCAUC = %f, want 0", got)
			}
		})
	}
}

func TestStratifiedKFold(t *testing.T) {
	tests := []struct {
		name string
		y    []string
		k    int
		want [][]int
	}{
		{"balanced", []string{"a", "a", "a", "b", "b", "b"}, 3, [][]int{{0, 3}, {1, 4}, {2, 5}}},
		{"uneven", []string{"b", "b", "a", "a", "a", "b", "b", "b"}, 2, [][]int{{0, 1, 2, 5}, {3, 4, 6, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StratifiedKFold(tt.y, tt.k)
			if err != nil {
				t.Fatalf("StratifiedKFold failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("folds = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := StratifiedKFold([]string{"a"}, 2); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestComplement(t *testing.T) {
	if got := Complement(5, []int{1, 3}); !reflect.DeepEqual(got, []int{0, 2, 4}) {
		t.Errorf("Complement = %v", got)
	}
}

func TestStratifiedSplit(t *testing.T) {
	var y []string
	for i := 0; i < 10; i++ {
		y = append(y, "a", "b")
	}

	train, test, err := StratifiedSplit(y, 0.2, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit failed: %v", err)
	}

	if len(train) != 16 || len(test) != 4 {
		t.Fatalf("Expected 16/4 split, got %d/%d", len(train), len(test))
	}

	perClass := map[string]int{}
	for _, i := range test {
		perClass[y[i]]++
	}
	if perClass["a"] != 2 || perClass["b"] != 2 {
		t.Errorf("Test partition not stratified: %v", perClass)
	}

	all := append(append([]int{}, train...), test...)
	sort.Ints(all)
	for i := range all {
		if all[i] != i {
			t.Fatalf("Partitions do not cover every index once: %v", all)
		}
	}

	train2, test2, _ := StratifiedSplit(y, 0.2, 42)
	if !reflect.DeepEqual(train, train2) || !reflect.DeepEqual(test, test2) {
		t.Errorf("Same seed should give the same split")
	}
}

func TestStratifiedSplitInvalid(t *testing.T) {
	tests := []struct {
		name     string
		y        []string
		testSize float64
	}{
		{"test size zero", []string{"a", "a", "b", "b"}, 0},
		{"singleton class", []string{"a", "a", "a", "b"}, 0.5},
		{"too few samples", []string{"a", "a", "b", "b", "c", "c"}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := StratifiedSplit(tt.y, tt.testSize, 1); !errors.Is(err, internalerr.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
