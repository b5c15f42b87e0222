package dataset

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
	"github.com/cognicore/cinegenre/pkg/cinegenre/textnorm"
)

// DefaultMinSupport is the smallest group size kept for training.
const DefaultMinSupport = 50

// minTextRunes is the shortest normalized text kept, exclusive.
const minTextRunes = 2

// Assembler orchestrates the corpus flow:
// raw record → first label → taxonomy group → normalized text
type Assembler struct {
	normalizer *textnorm.Normalizer
	taxonomy   *taxonomy.Taxonomy
}

// NewAssembler creates an assembler with the given components
func NewAssembler(normalizer *textnorm.Normalizer, tax *taxonomy.Taxonomy) *Assembler {
	return &Assembler{
		normalizer: normalizer,
		taxonomy:   tax,
	}
}

// Assemble converts the records of every source into rows, preserving source
// and record order. Duplicates across sources are kept.
func (a *Assembler) Assemble(sources ...Source) []Row {
	var rows []Row
	for _, src := range sources {
		for _, rec := range src.Records {
			row, ok := a.assembleOne(src.Name, rec)
			if ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func (a *Assembler) assembleOne(source string, rec Record) (Row, bool) {
	raw := taxonomy.FirstLabel(rec.Genres)
	group := a.taxonomy.Map(raw)
	if group == taxonomy.Other {
		return Row{}, false
	}

	text := a.normalizer.Normalize(rec.Plot, textnorm.Training)
	if utf8.RuneCountInString(text) <= minTextRunes {
		return Row{}, false
	}

	row := Row{
		Text:      text,
		RawLabel:  raw,
		Group:     group,
		AllLabels: taxonomy.SplitLabels(rec.Genres),
		Source:    source,
	}
	if err := row.Validate(); err != nil {
		return Row{}, false
	}
	return row, true
}

// Build produces the base corpus from the primary source and the augmented
// corpus from the primary plus every supplementary source. A primary source
// that yields no rows is an error.
func (a *Assembler) Build(primary Source, supplementary ...Source) (Corpora, error) {
	base := a.Assemble(primary)
	if len(base) == 0 {
		return Corpora{}, fmt.Errorf("%w: primary source %q produced no rows", internalerr.ErrInvalidInput, primary.Name)
	}

	extra := a.Assemble(supplementary...)
	augmented := make([]Row, 0, len(base)+len(extra))
	augmented = append(augmented, base...)
	augmented = append(augmented, extra...)

	return Corpora{Base: base, Augmented: augmented}, nil
}

// FilterMinSupport drops every row of a group with fewer than min rows and
// returns the kept rows and the removed group names in sorted order.
func FilterMinSupport(rows []Row, min int) ([]Row, []string) {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Group]++
	}

	var removed []string
	for g, c := range counts {
		if c < min {
			removed = append(removed, g)
		}
	}
	sort.Strings(removed)
	if len(removed) == 0 {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out, nil
	}

	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if counts[r.Group] >= min {
			kept = append(kept, r)
		}
	}
	return kept, removed
}
