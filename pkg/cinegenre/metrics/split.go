package metrics

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// StratifiedSplit shuffles indices into train and test partitions that keep
// the class proportions of y. testSize is the test fraction in (0, 1).
func StratifiedSplit(y []string, testSize float64, seed uint64) (train, test []int, err error) {
	n := len(y)
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("%w: test size %v outside (0, 1)", internalerr.ErrInvalidInput, testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest

	classes, members := groupIndices(y)
	if nTrain < len(classes) || nTest < len(classes) {
		return nil, nil, fmt.Errorf("%w: %d samples cannot be split over %d classes", internalerr.ErrInvalidInput, n, len(classes))
	}
	for _, c := range classes {
		if len(members[c]) < 2 {
			return nil, nil, fmt.Errorf("%w: class %q has fewer than 2 members", internalerr.ErrInvalidInput, c)
		}
	}

	counts := make([]int, len(classes))
	for i, c := range classes {
		counts[i] = len(members[c])
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	trainAlloc := approximateMode(counts, nTrain)
	rest := make([]int, len(counts))
	for i := range counts {
		rest[i] = counts[i] - trainAlloc[i]
	}
	testAlloc := approximateMode(rest, nTest)

	for i, c := range classes {
		perm := make([]int, len(members[c]))
		copy(perm, members[c])
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		train = append(train, perm[:trainAlloc[i]]...)
		test = append(test, perm[trainAlloc[i]:trainAlloc[i]+testAlloc[i]]...)
	}

	rng.Shuffle(len(train), func(a, b int) { train[a], train[b] = train[b], train[a] })
	rng.Shuffle(len(test), func(a, b int) { test[a], test[b] = test[b], test[a] })
	return train, test, nil
}

// approximateMode distributes draw items over classes proportionally to
// counts, giving leftovers to the largest fractional remainders.
func approximateMode(counts []int, draw int) []int {
	total := 0
	for _, c := range counts {
		total += c
	}

	out := make([]int, len(counts))
	if total == 0 {
		return out
	}

	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(c) * float64(draw) / float64(total)
		out[i] = int(math.Floor(exact))
		assigned += out[i]
		rems[i] = rem{i, exact - float64(out[i])}
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; assigned < draw && k < len(rems)*2; k++ {
		i := rems[k%len(rems)].i
		if out[i] < counts[i] {
			out[i]++
			assigned++
		}
	}
	return out
}

// StratifiedKFold returns k test folds of indices without shuffling. Each
// class is dealt to the folds in contiguous blocks whose sizes follow the
// round-robin allocation of the sorted class codes.
func StratifiedKFold(y []string, k int) ([][]int, error) {
	n := len(y)
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", internalerr.ErrInvalidInput, k)
	}
	if k > n {
		return nil, fmt.Errorf("%w: %d folds for %d samples", internalerr.ErrInvalidInput, k, n)
	}

	// classes are coded in order of first appearance
	code := make(map[string]int)
	encoded := make([]int, n)
	for i, label := range y {
		c, ok := code[label]
		if !ok {
			c = len(code)
			code[label] = c
		}
		encoded[i] = c
	}
	nClasses := len(code)

	order := make([]int, n)
	copy(order, encoded)
	sort.Ints(order)

	allocation := make([][]int, k)
	for f := 0; f < k; f++ {
		allocation[f] = make([]int, nClasses)
		for i := f; i < n; i += k {
			allocation[f][order[i]]++
		}
	}

	testFold := make([]int, n)
	for c := 0; c < nClasses; c++ {
		var folds []int
		for f := 0; f < k; f++ {
			for r := 0; r < allocation[f][c]; r++ {
				folds = append(folds, f)
			}
		}
		pos := 0
		for i := range encoded {
			if encoded[i] == c {
				testFold[i] = folds[pos]
				pos++
			}
		}
	}

	out := make([][]int, k)
	for i, f := range testFold {
		out[f] = append(out[f], i)
	}
	return out, nil
}

// Complement returns the indices in [0, n) not present in fold.
func Complement(n int, fold []int) []int {
	in := make([]bool, n)
	for _, i := range fold {
		in[i] = true
	}
	out := make([]int, 0, n-len(fold))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func groupIndices(y []string) ([]string, map[string][]int) {
	members := make(map[string][]int)
	for i, label := range y {
		members[label] = append(members[label], i)
	}
	classes := make([]string, 0, len(members))
	for c := range members {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes, members
}
