package dataset

import "sort"

// GroupCount is the number of rows of one group
type GroupCount struct {
	Group string
	Count int
}

// Stats counts rows per group, largest first, ties by name.
func Stats(rows []Row) []GroupCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Group]++
	}

	out := make([]GroupCount, 0, len(counts))
	for g, c := range counts {
		out = append(out, GroupCount{Group: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// Classes returns the distinct groups of rows in sorted order.
func Classes(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.Group] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
