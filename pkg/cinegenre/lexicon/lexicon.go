package lexicon

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed irregular.yaml
var irregularYAML []byte

// Lexicon stores curated lemma mappings:
// - Irregular plurals: men → man, mice → mouse
// - Domain forms the dictionary lemmatizer gets wrong: aliens → alien
//
// Lookups are case-insensitive and every lemma maps to itself.
type Lexicon struct {
	// lemma -> all forms (including the lemma itself)
	// Example: "woman" -> ["woman", "women"]
	forms map[string][]string

	// form -> lemma
	// Example: "women" -> "woman"
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		forms:        make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// Irregular returns a lexicon seeded with the built-in irregular noun table.
func Irregular() *Lexicon {
	lex, err := Parse(irregularYAML)
	if err != nil {
		panic("lexicon: embedded irregular table: " + err.Error())
	}
	return lex
}

// LoadFromYAML loads lemma mappings from a YAML file.
//
// Expected format:
//
//	lemmas:
//	  - lemma: woman
//	    forms: [women]
//	  - lemma: alien
//	    forms: [aliens]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML lemma document.
func Parse(data []byte) (*Lexicon, error) {
	var config struct {
		Lemmas []struct {
			Lemma string   `yaml:"lemma"`
			Forms []string `yaml:"forms"`
		} `yaml:"lemmas"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Lemmas {
		if strings.TrimSpace(entry.Lemma) == "" {
			continue
		}
		lex.AddLemma(entry.Lemma, entry.Forms)
	}
	return lex, nil
}

// AddLemma registers a lemma with its inflected forms.
// The lemma is always the first entry of its form list. Re-adding a lemma
// replaces its previous forms.
func (l *Lexicon) AddLemma(lemma string, forms []string) {
	lemma = strings.ToLower(strings.TrimSpace(lemma))

	if old, exists := l.forms[lemma]; exists {
		for _, f := range old {
			delete(l.reverseIndex, f)
		}
	}

	normalized := make([]string, 0, len(forms)+1)
	seen := map[string]bool{lemma: true}
	normalized = append(normalized, lemma)
	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		normalized = append(normalized, f)
		seen[f] = true
	}

	l.forms[lemma] = normalized
	for _, f := range normalized {
		l.reverseIndex[f] = lemma
	}
}

// Merge copies every lemma of other into l; entries in other win.
func (l *Lexicon) Merge(other *Lexicon) {
	if other == nil {
		return
	}
	for lemma, forms := range other.forms {
		l.AddLemma(lemma, forms[1:])
	}
}

// Lemma returns the lemma of a token, or the lowercased token itself when
// the lexicon has no entry for it.
func (l *Lexicon) Lemma(token string) string {
	token = strings.ToLower(token)
	if lemma, ok := l.reverseIndex[token]; ok {
		return lemma
	}
	return token
}

// Has reports whether the token is a known lemma or form.
func (l *Lexicon) Has(token string) bool {
	_, ok := l.reverseIndex[strings.ToLower(token)]
	return ok
}

// Forms returns all known forms of the token's lemma (lemma first).
// Unknown tokens yield a slice containing only the token.
func (l *Lexicon) Forms(token string) []string {
	token = strings.ToLower(token)
	if lemma, ok := l.reverseIndex[token]; ok {
		return l.forms[lemma]
	}
	return []string{token}
}

// Lemmas lists every lemma in sorted order.
func (l *Lexicon) Lemmas() []string {
	out := make([]string, 0, len(l.forms))
	for lemma := range l.forms {
		out = append(out, lemma)
	}
	sort.Strings(out)
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, forms := range l.forms {
		total += len(forms)
	}
	return Stats{Lemmas: len(l.forms), TotalForms: total}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Lemmas     int // Number of lemmas
	TotalForms int // Forms across all lemmas, lemmas included
}
