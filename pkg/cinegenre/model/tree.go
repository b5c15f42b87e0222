package model

import (
	"math/rand/v2"
	"sort"

	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// Tree is a fitted binary decision tree stored as flat node arrays. A node
// with Feature -1 is a leaf whose Value holds the class distribution.
type Tree struct {
	Feature   []int       `json:"feature"`
	Threshold []float64   `json:"threshold"`
	Left      []int       `json:"left"`
	Right     []int       `json:"right"`
	Value     [][]float64 `json:"value"`
}

// Proba walks x to a leaf and returns its class distribution.
func (t *Tree) Proba(x vectorize.Vector) []float64 {
	node := 0
	for t.Feature[node] >= 0 {
		if x.At(t.Feature[node]) <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

func (t *Tree) addNode() int {
	t.Feature = append(t.Feature, -1)
	t.Threshold = append(t.Threshold, 0)
	t.Left = append(t.Left, -1)
	t.Right = append(t.Right, -1)
	t.Value = append(t.Value, nil)
	return len(t.Feature) - 1
}

// entry is one stored value of a column
type entry struct {
	row int
	val float64
}

// columns is a compressed sparse column view of a Matrix
type columns [][]entry

func toColumns(X Matrix) columns {
	cols := make(columns, X.Cols)
	for i, row := range X.Rows {
		for k, j := range row.Indices {
			cols[j] = append(cols[j], entry{row: i, val: row.Values[k]})
		}
	}
	return cols
}

// treeBuilder grows one fully developed gini tree. Feature values are
// assumed non-negative, so absent entries form the lowest block.
type treeBuilder struct {
	cols     columns
	codes    []int
	weights  []float64
	classes  int
	mtry     int
	rng      *rand.Rand
	member   []bool
	tree     *Tree
	swapped  map[int]int
	nonZeros []entry
}

func newTreeBuilder(cols columns, codes []int, weights []float64, classes, mtry int, rng *rand.Rand) *treeBuilder {
	return &treeBuilder{
		cols:    cols,
		codes:   codes,
		weights: weights,
		classes: classes,
		mtry:    mtry,
		rng:     rng,
		member:  make([]bool, len(codes)),
		tree:    &Tree{},
	}
}

func (b *treeBuilder) distribution(samples []int) ([]float64, float64) {
	dist := make([]float64, b.classes)
	var total float64
	for _, s := range samples {
		dist[b.codes[s]] += b.weights[s]
		total += b.weights[s]
	}
	return dist, total
}

func (b *treeBuilder) build(samples []int) int {
	node := b.tree.addNode()
	dist, total := b.distribution(samples)

	pure := 0
	for _, d := range dist {
		if d > 0 {
			pure++
		}
	}

	if len(samples) < 2 || pure <= 1 {
		b.leaf(node, dist, total)
		return node
	}

	feature, threshold, ok := b.split(samples, dist, total)
	if !ok {
		b.leaf(node, dist, total)
		return node
	}

	var left, right []int
	for _, s := range samples {
		b.member[s] = true
	}
	values := make(map[int]float64)
	for _, e := range b.cols[feature] {
		if b.member[e.row] {
			values[e.row] = e.val
		}
	}
	for _, s := range samples {
		b.member[s] = false
		if values[s] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	b.tree.Feature[node] = feature
	b.tree.Threshold[node] = threshold
	l := b.build(left)
	r := b.build(right)
	b.tree.Left[node] = l
	b.tree.Right[node] = r
	return node
}

func (b *treeBuilder) leaf(node int, dist []float64, total float64) {
	v := make([]float64, len(dist))
	if total > 0 {
		for i, d := range dist {
			v[i] = d / total
		}
	}
	b.tree.Value[node] = v
}

// drawFeature returns the i-th element of a lazily shuffled feature order.
func (b *treeBuilder) drawFeature(i, n int) int {
	get := func(k int) int {
		if v, ok := b.swapped[k]; ok {
			return v
		}
		return k
	}
	r := i + b.rng.IntN(n-i)
	vr, vi := get(r), get(i)
	b.swapped[r] = vi
	b.swapped[i] = vr
	return vr
}

// split searches randomly drawn features until mtry have been visited and
// at least one of them is non-constant in the node, and returns the
// threshold with the lowest weighted gini impurity.
func (b *treeBuilder) split(samples []int, dist []float64, total float64) (int, float64, bool) {
	for _, s := range samples {
		b.member[s] = true
	}
	defer func() {
		for _, s := range samples {
			b.member[s] = false
		}
	}()

	nFeatures := len(b.cols)
	b.swapped = make(map[int]int)

	bestScore := -1.0
	bestFeature, bestThreshold := -1, 0.0
	found := 0

	left := make([]float64, b.classes)
	for visited := 0; visited < nFeatures && (visited < b.mtry || found == 0); visited++ {
		f := b.drawFeature(visited, nFeatures)

		nz := b.nonZeros[:0]
		for _, e := range b.cols[f] {
			if b.member[e.row] {
				nz = append(nz, e)
			}
		}
		b.nonZeros = nz

		zeros := len(samples) - len(nz)
		if len(nz) == 0 {
			continue
		}
		sort.Slice(nz, func(i, j int) bool { return nz[i].val < nz[j].val })
		if zeros == 0 && nz[0].val == nz[len(nz)-1].val {
			continue
		}
		found++

		// the zero block starts on the left
		copy(left, dist)
		leftW := total
		for _, e := range nz {
			left[b.codes[e.row]] -= b.weights[e.row]
			leftW -= b.weights[e.row]
		}

		consider := func(threshold float64) {
			rightW := total - leftW
			if leftW <= 0 || rightW <= 0 {
				return
			}
			var sl, sr float64
			for c := 0; c < b.classes; c++ {
				l := left[c]
				r := dist[c] - l
				sl += l * l
				sr += r * r
			}
			score := sl/leftW + sr/rightW
			if score > bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = threshold
			}
		}

		if zeros > 0 {
			consider(nz[0].val / 2)
		}
		for k := 0; k < len(nz)-1; k++ {
			e := nz[k]
			left[b.codes[e.row]] += b.weights[e.row]
			leftW += b.weights[e.row]
			if nz[k+1].val > e.val {
				consider(e.val + (nz[k+1].val-e.val)/2)
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
