package dataset

import (
	"errors"
	"strings"
)

// Variant names of the two training corpora.
const (
	VariantBase      = "base"
	VariantAugmented = "augmented"
)

// Record is one raw labeled plot as read from a source
type Record struct {
	Plot   string
	Genres string // comma-separated raw labels, first one wins
}

// Source is a named collection of raw records
type Source struct {
	Name    string
	Records []Record
}

// Row is a normalized training example
type Row struct {
	Text      string
	RawLabel  string
	Group     string
	AllLabels []string // every raw label listed for the film
	Source    string
}

// Validate checks if the row has required fields
func (r *Row) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("row text is required")
	}

	if strings.TrimSpace(r.RawLabel) == "" {
		return errors.New("row raw label is required")
	}

	if strings.TrimSpace(r.Group) == "" {
		return errors.New("row group is required")
	}

	return nil
}

// Corpora holds the two dataset variants built from the same rules
type Corpora struct {
	Base      []Row
	Augmented []Row
}

// Variant returns the rows of the named variant.
func (c Corpora) Variant(name string) ([]Row, bool) {
	switch name {
	case VariantBase:
		return c.Base, true
	case VariantAugmented:
		return c.Augmented, true
	default:
		return nil, false
	}
}

// Texts returns the text column of rows.
func Texts(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Text
	}
	return out
}

// Groups returns the group column of rows.
func Groups(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Group
	}
	return out
}
