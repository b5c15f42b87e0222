package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// ClassScore holds per-class precision, recall and F1
type ClassScore struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Accuracy returns the fraction of exact matches.
func Accuracy(yTrue, yPred []string) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// Labels returns the sorted union of labels seen in either slice.
func Labels(yTrue, yPred []string) []string {
	seen := make(map[string]struct{})
	for _, y := range yTrue {
		seen[y] = struct{}{}
	}
	for _, y := range yPred {
		seen[y] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// PerClass computes precision, recall and F1 for every label. A zero
// denominator yields 0.
func PerClass(yTrue, yPred []string) []ClassScore {
	labels := Labels(yTrue, yPred)
	tp := make(map[string]int)
	predicted := make(map[string]int)
	support := make(map[string]int)
	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		}
	}

	out := make([]ClassScore, len(labels))
	for i, l := range labels {
		s := ClassScore{Label: l, Support: support[l]}
		s.Precision = ratio(tp[l], predicted[l])
		s.Recall = ratio(tp[l], support[l])
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		out[i] = s
	}
	return out
}

// Weighted returns support-weighted precision, recall and F1.
func Weighted(yTrue, yPred []string) (precision, recall, f1 float64) {
	if len(yTrue) == 0 {
		return 0, 0, 0
	}
	total := float64(len(yTrue))
	for _, s := range PerClass(yTrue, yPred) {
		w := float64(s.Support) / total
		precision += w * s.Precision
		recall += w * s.Recall
		f1 += w * s.F1
	}
	return precision, recall, f1
}

// WeightedF1 returns the support-weighted F1 score.
func WeightedF1(yTrue, yPred []string) float64 {
	_, _, f1 := Weighted(yTrue, yPred)
	return f1
}

// ConfusionMatrix counts true label (row) against predicted label (column)
// in labels order. Pairs outside labels are ignored.
func ConfusionMatrix(yTrue, yPred, labels []string) [][]int {
	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}

	m := make([][]int, len(labels))
	for i := range m {
		m[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		r, ok1 := pos[yTrue[i]]
		c, ok2 := pos[yPred[i]]
		if ok1 && ok2 {
			m[r][c]++
		}
	}
	return m
}

// Report renders a plain-text classification report.
func Report(yTrue, yPred []string) string {
	scores := PerClass(yTrue, yPred)

	width := len("weighted avg")
	for _, s := range scores {
		if len(s.Label) > width {
			width = len(s.Label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	var macroP, macroR, macroF float64
	for _, s := range scores {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, s.Label, s.Precision, s.Recall, s.F1, s.Support)
		macroP += s.Precision
		macroR += s.Recall
		macroF += s.F1
	}
	b.WriteString("\n")

	n := len(yTrue)
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", Accuracy(yTrue, yPred), n)
	if k := float64(len(scores)); k > 0 {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "macro avg", macroP/k, macroR/k, macroF/k, n)
	}
	p, r, f := Weighted(yTrue, yPred)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "weighted avg", p, r, f, n)

	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
