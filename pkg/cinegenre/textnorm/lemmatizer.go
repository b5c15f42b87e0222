package textnorm

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/cognicore/cinegenre/pkg/cinegenre/lexicon"
	"github.com/cognicore/cinegenre/pkg/cinegenre/stoplist"
)

// Golem wraps the dictionary-backed English lemmatizer.
type Golem struct {
	lem *golem.Lemmatizer
}

// NewGolem loads the English dictionary.
func NewGolem() (*Golem, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &Golem{lem: lem}, nil
}

// Lemma implements Lemmatizer.
func (g *Golem) Lemma(word string) string {
	return g.lem.Lemma(word)
}

// Chain consults a curated lexicon first and falls back to another
// lemmatizer for words the lexicon does not know.
type Chain struct {
	lex      *lexicon.Lexicon
	fallback Lemmatizer
}

// NewChain builds a lexicon-first lemmatizer. Either part may be nil.
func NewChain(lex *lexicon.Lexicon, fallback Lemmatizer) *Chain {
	return &Chain{lex: lex, fallback: fallback}
}

// Lemma implements Lemmatizer.
func (c *Chain) Lemma(word string) string {
	if c.lex != nil && c.lex.Has(word) {
		return c.lex.Lemma(word)
	}
	if c.fallback != nil {
		return c.fallback.Lemma(word)
	}
	return word
}

// NewEnglish builds the standard training normalizer: the built-in English
// stop words, the irregular-plural lexicon and the dictionary lemmatizer.
func NewEnglish() (*Normalizer, error) {
	g, err := NewGolem()
	if err != nil {
		return nil, err
	}
	return NewNormalizer(stoplist.NewEnglish(), NewChain(lexicon.Irregular(), g)), nil
}
