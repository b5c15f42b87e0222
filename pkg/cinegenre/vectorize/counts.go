package vectorize

// counter maintains document and corpus frequencies during fitting
type counter struct {
	n  int            // total number of documents
	df map[string]int // document frequency per term
	tf map[string]int // corpus frequency per term
}

func newCounter() *counter {
	return &counter{
		df: make(map[string]int),
		tf: make(map[string]int),
	}
}

// addDocument updates counts with the term occurrences of one document
func (c *counter) addDocument(terms []string) {
	c.n++

	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		c.tf[t]++
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		c.df[t]++
	}
}
