package train

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

var vocab = map[string][]string{
	taxonomy.ActionAdventure:     {"battle", "soldier", "explosion", "chase", "mission", "army"},
	taxonomy.DramaRomance:        {"love", "marriage", "grief", "heart", "letter", "wedding"},
	taxonomy.CrimeThrillerHorror: {"murder", "detective", "ghost", "killer", "police", "blood"},
	taxonomy.ComedyFamily:        {"joke", "puppy", "holiday", "prank", "silly", "party"},
}

var rawLabel = map[string]string{
	taxonomy.ActionAdventure:     "Action",
	taxonomy.DramaRomance:        "Drama",
	taxonomy.CrimeThrillerHorror: "Crime",
	taxonomy.ComedyFamily:        "Comedy",
}

func syntheticRows(group string, n int, extraLabel string) []dataset.Row {
	words := vocab[group]
	rows := make([]dataset.Row, n)
	for i := range rows {
		text := fmt.Sprintf("%s %s %s %s story film",
			words[i%6], words[(i+1)%6], words[(i+2)%6], words[(i+3)%6])
		labels := []string{rawLabel[group]}
		if extraLabel != "" {
			labels = append(labels, extraLabel)
		}
		rows[i] = dataset.Row{
			Text:      text,
			RawLabel:  rawLabel[group],
			Group:     group,
			AllLabels: labels,
			Source:    "synthetic",
		}
	}
	return rows
}

func threeGroupCorpus(extraLabel string) []dataset.Row {
	var rows []dataset.Row
	rows = append(rows, syntheticRows(taxonomy.ActionAdventure, 60, extraLabel)...)
	rows = append(rows, syntheticRows(taxonomy.DramaRomance, 60, extraLabel)...)
	rows = append(rows, syntheticRows(taxonomy.CrimeThrillerHorror, 60, extraLabel)...)
	return rows
}

func fastOptions(variant string) Options {
	opts := DefaultOptions(variant)
	opts.Folds = 3
	opts.Models = []string{model.KeyNaiveBayes, model.KeyLinearSVM}
	opts.Vectorizer = vectorize.Options{MinDF: 1, NGramMax: 2, Sublinear: true}
	return opts
}

func TestEvaluateThreeGroups(t *testing.T) {
	run, err := Evaluate(context.Background(), threeGroupCorpus(""), fastOptions(dataset.VariantBase))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(run.Classes) != 3 {
		t.Errorf("Expected 3 classes, got %v", run.Classes)
	}

	if !slices.Equal(run.Order, []string{"Naive Bayes", "Linear SVM"}) {
		t.Errorf("Unexpected order %v", run.Order)
	}

	for _, name := range run.Order {
		res := run.Results[name]
		if res.Accuracy < 0.9 || res.F1 < 0.9 {
			t.Errorf("%s scored too low: %+v", name, res)
		}
		if res.ValidationF1 <= 0 {
			t.Errorf("%s missing validation F1", name)
		}
		if res.FlexibleAccuracy != nil {
			t.Errorf("%s should not record flexible accuracy for single-label rows", name)
		}
		if run.Estimators[name] == nil {
			t.Errorf("%s estimator not kept", name)
		}
	}

	if nb := run.Results["Naive Bayes"]; nb.ROCAUC < 0.9 {
		t.Errorf("Naive Bayes ROC-AUC too low: %f", nb.ROCAUC)
	}
	if svm := run.Results["Linear SVM"]; svm.ROCAUC != 0 {
		t.Errorf("Margin-only model should score ROC-AUC 0, got %f", svm.ROCAUC)
	}

	if run.Best == "" || run.Vectorizer == nil || run.Vectorizer.Dim() == 0 {
		t.Errorf("Run incomplete: best=%q", run.Best)
	}
}

func TestEvaluateDropsUndersizedGroup(t *testing.T) {
	rows := threeGroupCorpus("")
	rows = append(rows, syntheticRows(taxonomy.ComedyFamily, 20, "")...)

	run, err := Evaluate(context.Background(), rows, fastOptions(dataset.VariantAugmented))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !slices.Equal(run.Removed, []string{taxonomy.ComedyFamily}) {
		t.Errorf("Expected comedy removed, got %v", run.Removed)
	}
	if slices.Contains(run.Classes, taxonomy.ComedyFamily) {
		t.Errorf("Removed group still among classes")
	}
	for _, est := range run.Estimators {
		if slices.Contains(est.Classes(), taxonomy.ComedyFamily) {
			t.Errorf("Estimator learned a removed group")
		}
	}
}

func TestEvaluateRecordsFlexibleAccuracy(t *testing.T) {
	run, err := Evaluate(context.Background(), threeGroupCorpus("Romance"), fastOptions(dataset.VariantAugmented))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	res := run.Results["Naive Bayes"]
	if res.FlexibleAccuracy == nil {
		t.Fatalf("Expected flexible accuracy with multi-label rows")
	}
	if *res.FlexibleAccuracy < res.Accuracy {
		t.Errorf("Flexible accuracy %f below accuracy %f", *res.FlexibleAccuracy, res.Accuracy)
	}
}

func TestEvaluateErrors(t *testing.T) {
	single := syntheticRows(taxonomy.DramaRomance, 60, "")
	if _, err := Evaluate(context.Background(), single, fastOptions("base")); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for one group, got %v", err)
	}

	opts := fastOptions("base")
	opts.Models = []string{"knn"}
	if _, err := Evaluate(context.Background(), threeGroupCorpus(""), opts); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown model, got %v", err)
	}

	opts = fastOptions("base")
	opts.TestSize = 1.5
	if _, err := Evaluate(context.Background(), threeGroupCorpus(""), opts); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for test size, got %v", err)
	}
}

func TestFlexibleAccuracy(t *testing.T) {
	tax := taxonomy.Default()
	rows := []dataset.Row{
		{Group: taxonomy.ActionAdventure, AllLabels: []string{"Action", "Comedy"}},
		{Group: taxonomy.DramaRomance, AllLabels: []string{"Drama"}},
		{Group: taxonomy.CrimeThrillerHorror, AllLabels: []string{"Crime", "Horror"}},
	}
	preds := []string{taxonomy.ComedyFamily, taxonomy.DramaRomance, taxonomy.DramaRomance}

	got, ok := FlexibleAccuracy(rows, preds, tax)
	if !ok {
		t.Fatalf("Expected flexible accuracy to be defined")
	}
	if want := 2.0 / 3.0; got != want {
		t.Errorf("FlexibleAccuracy = %f, want %f", got, want)
	}

	if _, ok := FlexibleAccuracy(rows[1:2], preds[1:2], tax); ok {
		t.Errorf("Single-label rows should not define flexible accuracy")
	}
}

type recordingReporter struct {
	models []string
}

func (r *recordingReporter) Report(_ context.Context, ev Evaluation) error {
	r.models = append(r.models, ev.Variant+"/"+ev.Model)
	return nil
}

func TestEvaluateCallsReporter(t *testing.T) {
	rec := &recordingReporter{}
	opts := fastOptions("base")
	opts.Reporter = rec

	if _, err := Evaluate(context.Background(), threeGroupCorpus(""), opts); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.models, []string{"base/Naive Bayes", "base/Linear SVM"}) {
		t.Errorf("Reporter saw %v", rec.models)
	}
}

func TestFileReporter(t *testing.T) {
	dir := t.TempDir()
	r := NewFileReporter(dir)

	run, err := Evaluate(context.Background(), threeGroupCorpus(""), func() Options {
		o := fastOptions("base")
		o.Models = []string{model.KeyNaiveBayes}
		o.Reporter = r
		return o
	}())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"cm_Naive_Bayes.csv", "roc_Naive_Bayes.json", "report_Naive_Bayes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, "base", name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "base", "cm_Naive_Bayes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "true\\predicted,"+strings.Join(run.Classes, ",") {
		t.Errorf("Unexpected header %q", header)
	}
}

func TestSlug(t *testing.T) {
	if Slug(" Random Forest ") != "Random_Forest" {
		t.Errorf("Unexpected slug %q", Slug(" Random Forest "))
	}
}
