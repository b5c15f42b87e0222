package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/cinegenre/pkg/cinegenre/stoplist"
)

// MaxTrainingRunes bounds how much of a plot is kept for training.
const MaxTrainingRunes = 2500

// Mode selects how aggressively text is normalized.
type Mode int

const (
	// Inference only case-folds and strips punctuation.
	Inference Mode = iota
	// Training additionally drops digits and stop words and lemmatizes.
	Training
)

func (m Mode) String() string {
	switch m {
	case Training:
		return "training"
	case Inference:
		return "inference"
	default:
		return "unknown"
	}
}

// Lemmatizer reduces a lowercase token to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Normalizer handles text cleaning for both the training corpus and
// inference requests
type Normalizer struct {
	stops      *stoplist.Manager
	lemmatizer Lemmatizer // Optional: training tokens pass through when nil
}

// NewNormalizer creates a normalizer with the given stop words and lemmatizer.
// A nil stoplist means no stop-word removal.
func NewNormalizer(stops *stoplist.Manager, lemmatizer Lemmatizer) *Normalizer {
	if stops == nil {
		stops = stoplist.NewManager(nil)
	}
	return &Normalizer{stops: stops, lemmatizer: lemmatizer}
}

// Normalize cleans raw text for the given mode. Empty input yields "".
func (n *Normalizer) Normalize(raw string, mode Mode) string {
	if mode != Training {
		return Clean(raw)
	}
	return n.normalizeTraining(raw)
}

// Clean lowercases text, strips everything that is neither a letter, a digit
// nor whitespace, and collapses whitespace runs.
func Clean(raw string) string {
	return strings.Join(fields(raw, false), " ")
}

func (n *Normalizer) normalizeTraining(raw string) string {
	raw = truncateRunes(raw, MaxTrainingRunes)

	words := fields(raw, true)
	out := words[:0]
	for _, w := range words {
		if n.stops.IsStop(w) {
			continue
		}
		if n.lemmatizer != nil {
			w = n.lemmatizer.Lemma(w)
		}
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// fields splits normalized text into whitespace-separated words.
func fields(raw string, dropDigits bool) []string {
	if raw == "" {
		return nil
	}
	text := norm.NFKC.String(raw)

	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r):
			current.WriteRune(unicode.ToLower(r))
		case unicode.IsNumber(r):
			if dropDigits && unicode.IsDigit(r) {
				continue
			}
			current.WriteRune(r)
		}
		// anything else is removed without splitting the word
	}
	flush()

	return words
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
