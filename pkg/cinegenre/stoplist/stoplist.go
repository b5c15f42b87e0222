package stoplist

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed english.yaml
var englishYAML []byte

// Manager holds the stop-word set applied to training text
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		stops[s] = struct{}{}
	}
	return &Manager{stops: stops}
}

// NewEnglish creates a manager seeded with the built-in English list.
func NewEnglish() *Manager {
	return NewManager(English())
}

// English returns the built-in English stop words.
func English() []string {
	terms, err := Parse(englishYAML)
	if err != nil {
		// the embedded file is part of the build
		panic("stoplist: embedded english list: " + err.Error())
	}
	return terms
}

// Parse decodes a YAML stoplist document of the form `terms: [...]`.
func Parse(data []byte) ([]string, error) {
	var doc struct {
		Terms []string `yaml:"terms"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Terms, nil
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.stops[strings.ToLower(token)] = struct{}{}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Len reports the number of stop words.
func (m *Manager) Len() int {
	return len(m.stops)
}

// All returns all stopwords in sorted order
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}
