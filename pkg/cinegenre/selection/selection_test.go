package selection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

type stubEstimator struct {
	kind string
}

func (s stubEstimator) Kind() string { return s.kind }

func (s stubEstimator) Fit(context.Context, model.Matrix, []string) error { return nil }

func (s stubEstimator) Predict(vectorize.Vector) string { return "Drama_Romance" }

func (s stubEstimator) Classes() []string { return []string{"Drama_Romance"} }

func flex(v float64) *float64 { return &v }

func run(variant string, results ...train.Result) *train.Run {
	r := &train.Run{
		Variant:    variant,
		Results:    make(map[string]train.Result),
		Estimators: make(map[string]model.Estimator),
	}
	for _, res := range results {
		r.Order = append(r.Order, res.Model)
		r.Results[res.Model] = res
		r.Estimators[res.Model] = stubEstimator{kind: res.Model}
	}
	return r
}

func TestSelectChampionPicksHighestFlexible(t *testing.T) {
	base := run("base",
		train.Result{Model: "Naive Bayes", Accuracy: 0.6},
		train.Result{Model: "SVM", Accuracy: 0.65},
	)
	aug := run("augmented",
		train.Result{Model: "Naive Bayes", Accuracy: 0.62, FlexibleAccuracy: flex(0.70)},
		train.Result{Model: "SVM", Accuracy: 0.70, FlexibleAccuracy: flex(0.85)},
	)

	champ, rows, err := SelectChampion(context.Background(), base, aug)
	if err != nil {
		t.Fatalf("SelectChampion failed: %v", err)
	}

	if champ.Model != "SVM" || champ.Score != 0.85 || champ.Variant != "augmented" {
		t.Errorf("Unexpected champion %+v", champ)
	}
	if champ.Estimator.(stubEstimator).kind != "SVM" {
		t.Errorf("Champion should carry the winning model's own estimator")
	}

	if len(rows) != 2 || rows[0].Algorithm != "Naive Bayes" || rows[1].StdAccBefore != 0.65 {
		t.Errorf("Unexpected rows %+v", rows)
	}
	for _, r := range rows {
		if r.FlexSource != FlexSourceFlexible {
			t.Errorf("Expected flexible source, got %q", r.FlexSource)
		}
	}
}

func TestSelectChampionFallsBackToF1(t *testing.T) {
	aug := run("augmented",
		train.Result{Model: "Naive Bayes", Accuracy: 0.9, F1: 0.70},
		train.Result{Model: "Random Forest", Accuracy: 0.8, F1: 0.85},
	)

	champ, rows, err := SelectChampion(context.Background(), nil, aug)
	if err != nil {
		t.Fatalf("SelectChampion failed: %v", err)
	}
	if champ.Model != "Random Forest" {
		t.Errorf("Expected Random Forest, got %s", champ.Model)
	}
	for _, r := range rows {
		if r.FlexSource != FlexSourceF1 || r.StdAccBefore != 0 {
			t.Errorf("Unexpected row %+v", r)
		}
	}
}

func TestSelectChampionIgnoresBaseOnlyModels(t *testing.T) {
	base := run("base", train.Result{Model: "Random Forest", Accuracy: 0.99})
	aug := run("augmented", train.Result{Model: "Naive Bayes", F1: 0.5})

	champ, rows, err := SelectChampion(context.Background(), base, aug)
	if err != nil {
		t.Fatalf("SelectChampion failed: %v", err)
	}
	if champ.Model != "Naive Bayes" {
		t.Errorf("Expected Naive Bayes, got %s", champ.Model)
	}

	rf := rows[1]
	if rf.Algorithm != "Random Forest" || rf.FlexAccAfter != 0 || rf.FlexSource != FlexSourceNone || rf.StdAccBefore != 0.99 {
		t.Errorf("Unexpected base-only row %+v", rf)
	}
}

func TestSelectChampionTieKeepsFirst(t *testing.T) {
	aug := run("augmented",
		train.Result{Model: "Random Forest", FlexibleAccuracy: flex(0.8)},
		train.Result{Model: "SVM", FlexibleAccuracy: flex(0.8)},
	)

	champ, _, err := SelectChampion(context.Background(), nil, aug)
	if err != nil {
		t.Fatal(err)
	}
	if champ.Model != "SVM" {
		t.Errorf("Expected SVM, which precedes Random Forest in the roster, got %s", champ.Model)
	}
}

func TestSelectChampionNoChampion(t *testing.T) {
	tests := []struct {
		name      string
		base, aug *train.Run
	}{
		{"both empty", run("base"), run("augmented")},
		{"both nil", nil, nil},
		{"all zero", nil, run("augmented", train.Result{Model: "SVM"})},
		{"base only", run("base", train.Result{Model: "SVM", Accuracy: 0.9}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SelectChampion(context.Background(), tt.base, tt.aug)
			if !errors.Is(err, internalerr.ErrNoChampion) {
				t.Errorf("Expected ErrNoChampion, got %v", err)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", ReportFile)
	rows := []Row{
		{Algorithm: "Naive Bayes", StdAccBefore: 0.5, StdAccAfter: 0.6, FlexAccAfter: 0.7},
		{Algorithm: "SVM", StdAccBefore: 0.25, StdAccAfter: 0.75, FlexAccAfter: 0.85},
	}

	if err := WriteReport(path, rows); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Algorithm,Std-Acc-Before,Std-Acc-After,Flexible-Acc-After\n" +
		"Naive Bayes,0.5,0.6,0.7\n" +
		"SVM,0.25,0.75,0.85\n"
	if string(data) != want {
		t.Errorf("Report =\n%s\nwant\n%s", data, want)
	}
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]Row{{Algorithm: "SVM", StdAccBefore: 0.7, StdAccAfter: 0.8, FlexAccAfter: 0.85}})
	for _, want := range []string{"Flexible-Acc-After", "70.00%", "80.00%", "85.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Table missing %q:\n%s", want, out)
		}
	}
}
