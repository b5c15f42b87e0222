package genreinfo

import (
	_ "embed"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed genres.yaml
var genresYAML []byte

// Fallback values for unknown genre tokens.
const (
	FallbackEmoji       = "🎬"
	FallbackDescription = "Film türü"
)

// Info is the display metadata of a genre
type Info struct {
	Emoji       string `yaml:"emoji" json:"emoji"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Resolver maps genre keys to display metadata
type Resolver struct {
	table map[string]Info
}

// NewResolver creates a resolver over table. Keys are lower-cased.
func NewResolver(table map[string]Info) *Resolver {
	t := make(map[string]Info, len(table))
	for k, v := range table {
		t[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Resolver{table: t}
}

// Parse decodes a YAML table of the form `genres: {key: {emoji, name, description}}`.
func Parse(data []byte) (map[string]Info, error) {
	var doc struct {
		Genres map[string]Info `yaml:"genres"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Genres, nil
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	table, err := Parse(genresYAML)
	if err != nil {
		panic("genreinfo: embedded table: " + err.Error())
	}
	return NewResolver(table)
})

// Default returns the resolver over the built-in table.
func Default() *Resolver {
	return defaultResolver()
}

// Resolve looks key up in the built-in table.
func Resolve(key string) Info {
	return Default().Resolve(key)
}

// Len returns the number of known genre tokens.
func (r *Resolver) Len() int {
	return len(r.table)
}

// Lookup returns the record of a single lower-case token.
func (r *Resolver) Lookup(token string) (Info, bool) {
	info, ok := r.table[token]
	return info, ok
}

// Resolve never fails. A key containing "_" is compound: the emojis and
// descriptions of its first two parts are combined and all part names are
// joined with " & ".
func (r *Resolver) Resolve(key string) Info {
	trimmed := strings.TrimSpace(key)
	lower := strings.ToLower(trimmed)

	if !strings.Contains(lower, "_") {
		if info, ok := r.table[lower]; ok {
			return info
		}
		return unknown(trimmed)
	}

	parts := strings.Split(lower, "_")
	emojis := make([]string, 0, len(parts))
	names := make([]string, 0, len(parts))
	descs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		info, ok := r.table[p]
		if !ok {
			info = unknown(p)
		}
		emojis = append(emojis, info.Emoji)
		names = append(names, info.Name)
		descs = append(descs, info.Description)
	}

	return Info{
		Emoji:       strings.Join(firstTwo(emojis), ""),
		Name:        strings.Join(names, " & "),
		Description: strings.Join(firstTwo(descs), " ve "),
	}
}

func unknown(token string) Info {
	return Info{
		Emoji:       FallbackEmoji,
		Name:        capitalize(token),
		Description: FallbackDescription,
	}
}

func firstTwo(s []string) []string {
	if len(s) > 2 {
		return s[:2]
	}
	return s
}

// capitalize title-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}
