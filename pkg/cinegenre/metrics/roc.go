package metrics

import (
	"sort"
)

// ROCPoint is one point of a receiver operating characteristic curve
type ROCPoint struct {
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
	Threshold float64 `json:"threshold"`
}

// BinaryAUC returns the area under the ROC curve for binary targets, with
// tied scores counted as half. ok is false when either class is absent.
func BinaryAUC(positive []bool, scores []float64) (auc float64, ok bool) {
	type pair struct {
		score float64
		pos   bool
	}
	ps := make([]pair, len(scores))
	var nPos, nNeg float64
	for i := range scores {
		ps[i] = pair{scores[i], positive[i]}
		if positive[i] {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}

	sort.Slice(ps, func(i, j int) bool { return ps[i].score < ps[j].score })

	// Mann-Whitney U over average ranks
	var rankSum float64
	for i := 0; i < len(ps); {
		j := i
		for j < len(ps) && ps[j].score == ps[i].score {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if ps[k].pos {
				rankSum += avg
			}
		}
		i = j
	}

	u := rankSum - nPos*(nPos+1)/2
	return u / (nPos * nNeg), true
}

// ROCCurve returns the curve points for binary targets, thresholds descending.
func ROCCurve(positive []bool, scores []float64) []ROCPoint {
	idx := make([]int, len(scores))
	var nPos, nNeg float64
	for i := range idx {
		idx[i] = i
		if positive[i] {
			nPos++
		} else {
			nNeg++
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	// the first point sits above every score so the curve starts at the origin
	var top float64
	if len(idx) > 0 {
		top = scores[idx[0]] + 1
	}
	points := []ROCPoint{{FPR: 0, TPR: 0, Threshold: top}}
	var tp, fp float64
	for k := 0; k < len(idx); k++ {
		if positive[idx[k]] {
			tp++
		} else {
			fp++
		}
		if k+1 < len(idx) && scores[idx[k+1]] == scores[idx[k]] {
			continue
		}
		points = append(points, ROCPoint{
			FPR:       safeDiv(fp, nNeg),
			TPR:       safeDiv(tp, nPos),
			Threshold: scores[idx[k]],
		})
	}
	return points
}

// ROCAUC returns the support-weighted one-vs-rest ROC-AUC of probability
// columns aligned with classes. The binarized target has one column when
// there are exactly two classes, so that case and any class missing from
// probaClasses yield 0, as does a class with no positive or no negative
// held-out example.
func ROCAUC(yTrue, classes, probaClasses []string, proba [][]float64) float64 {
	if len(proba) == 0 || len(proba) != len(yTrue) {
		return 0
	}

	width := len(classes)
	if width == 2 {
		width = 1
	}
	if width != len(probaClasses) {
		return 0
	}

	col := make(map[string]int, len(probaClasses))
	for i, c := range probaClasses {
		col[c] = i
	}

	sorted := make([]string, len(classes))
	copy(sorted, classes)
	sort.Strings(sorted)

	var total, weighted float64
	for _, c := range sorted {
		j, ok := col[c]
		if !ok {
			return 0
		}

		positive := make([]bool, len(yTrue))
		scores := make([]float64, len(yTrue))
		support := 0
		for i := range yTrue {
			positive[i] = yTrue[i] == c
			if positive[i] {
				support++
			}
			scores[i] = proba[i][j]
		}

		auc, ok := BinaryAUC(positive, scores)
		if !ok {
			return 0
		}
		weighted += float64(support) * auc
		total += float64(support)
	}

	if total == 0 {
		return 0
	}
	return weighted / total
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
