package taxonomy

import (
	"fmt"
	"strings"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// Other is the sentinel group for labels outside the table.
const Other = "Other"

// Default group names.
const (
	ActionAdventure     = "Action_Adventure"
	SciFiFantasy        = "SciFi_Fantasy"
	DramaRomance        = "Drama_Romance"
	CrimeThrillerHorror = "Crime_Thriller_Horror"
	ComedyFamily        = "Comedy_Family"
)

// Taxonomy collapses raw genre labels into coarse groups
type Taxonomy struct {
	order  []string            // group names in declaration order
	groups map[string][]string // group → raw labels
	index  map[string]string   // raw label → group
}

// New creates an empty taxonomy
func New() *Taxonomy {
	return &Taxonomy{
		groups: make(map[string][]string),
		index:  make(map[string]string),
	}
}

// Default returns the built-in five-group table.
func Default() *Taxonomy {
	t := New()
	// the table is static, AddGroup cannot fail on it
	_ = t.AddGroup(ActionAdventure, []string{"Action", "Adventure", "War"})
	_ = t.AddGroup(SciFiFantasy, []string{"Sci-Fi", "Fantasy", "Animation"})
	_ = t.AddGroup(DramaRomance, []string{"Drama", "Biography", "History", "Romance"})
	_ = t.AddGroup(CrimeThrillerHorror, []string{"Crime", "Mystery", "Thriller", "Horror"})
	_ = t.AddGroup(ComedyFamily, []string{"Comedy", "Family", "Musical"})
	return t
}

// AddGroup registers a group with the raw labels that map to it.
// A label already owned by another group is rejected.
func (t *Taxonomy) AddGroup(name string, labels []string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == Other {
		return fmt.Errorf("%w: invalid taxonomy group name %q", internalerr.ErrInvalidConfig, name)
	}

	for _, l := range labels {
		l = strings.TrimSpace(l)
		if owner, ok := t.index[l]; ok && owner != name {
			return fmt.Errorf("%w: label %q already mapped to %s", internalerr.ErrInvalidConfig, l, owner)
		}
	}

	if _, exists := t.groups[name]; !exists {
		t.order = append(t.order, name)
	}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := t.index[l]; ok {
			continue
		}
		t.index[l] = name
		t.groups[name] = append(t.groups[name], l)
	}
	return nil
}

// Map returns the group of a raw label, or Other.
func (t *Taxonomy) Map(rawLabel string) string {
	if g, ok := t.index[strings.TrimSpace(rawLabel)]; ok {
		return g
	}
	return Other
}

// Contains reports whether name is one of the taxonomy's groups.
func (t *Taxonomy) Contains(name string) bool {
	_, ok := t.groups[name]
	return ok
}

// Groups returns the group names in declaration order.
func (t *Taxonomy) Groups() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Labels returns the raw labels of a group.
func (t *Taxonomy) Labels(group string) []string {
	labels := t.groups[group]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// FirstLabel extracts the first entry of a comma-separated label list.
func FirstLabel(labels string) string {
	first, _, _ := strings.Cut(labels, ",")
	return strings.TrimSpace(first)
}

// SplitLabels splits a comma-separated label list, dropping empty entries.
func SplitLabels(labels string) []string {
	parts := strings.Split(labels, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
