package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/cinegenre/pkg/cinegenre/genreinfo"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/lexicon"
	"github.com/cognicore/cinegenre/pkg/cinegenre/stoplist"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
	"github.com/cognicore/cinegenre/pkg/cinegenre/textnorm"
)

// Loader loads all resource files and constructs components. Empty paths
// select the built-in resources.
type Loader struct {
	StoplistPath  string
	TaxonomyPath  string
	LexiconPath   string
	GenreInfoPath string

	// DictionaryLemmas adds the English dictionary lemmatizer behind the
	// lexicon.
	DictionaryLemmas bool
}

// Components holds all loaded configuration components
type Components struct {
	Normalizer *textnorm.Normalizer
	Taxonomy   *taxonomy.Taxonomy
	Lexicon    *lexicon.Lexicon
	Resolver   *genreinfo.Resolver
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load stoplist
	stops := stoplist.NewEnglish()
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops = stoplist.NewManager(sl.Terms)
	}

	// Load lexicon on top of the irregular plurals
	comp.Lexicon = lexicon.Irregular()
	if l.LexiconPath != "" {
		lex, err := LoadLexicon(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon.Merge(lex)
	}

	var fallback textnorm.Lemmatizer
	if l.DictionaryLemmas {
		g, err := textnorm.NewGolem()
		if err != nil {
			return nil, err
		}
		fallback = g
	}
	comp.Normalizer = textnorm.NewNormalizer(stops, textnorm.NewChain(comp.Lexicon, fallback))

	// Load taxonomy
	if l.TaxonomyPath != "" {
		taxConfig, err := LoadTaxonomy(l.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		comp.Taxonomy = taxonomy.New()
		for _, g := range taxConfig.Groups {
			if comp.Taxonomy.Contains(strings.TrimSpace(g.Name)) {
				return nil, fmt.Errorf("load taxonomy: %w: duplicate group %q", internalerr.ErrInvalidConfig, g.Name)
			}
			if err := comp.Taxonomy.AddGroup(g.Name, g.Labels); err != nil {
				return nil, fmt.Errorf("load taxonomy: %w", err)
			}
		}
	} else {
		comp.Taxonomy = taxonomy.Default()
	}

	// Load genre metadata
	if l.GenreInfoPath != "" {
		table, err := LoadGenreInfo(l.GenreInfoPath)
		if err != nil {
			return nil, fmt.Errorf("load genre info: %w", err)
		}
		comp.Resolver = genreinfo.NewResolver(table)
	} else {
		comp.Resolver = genreinfo.Default()
	}

	return comp, nil
}
