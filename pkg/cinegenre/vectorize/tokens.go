package vectorize

import (
	"strings"
	"unicode"
)

// tokenize splits text into lower-case runs of at least two word runes.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	runes := 0

	flush := func() {
		if runes >= 2 {
			tokens = append(tokens, b.String())
		}
		b.Reset()
		runes = 0
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
			runes++
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// terms expands tokens into n-grams of length 1 through maxN.
func terms(tokens []string, maxN int) []string {
	if maxN < 1 {
		maxN = 1
	}

	out := make([]string, 0, len(tokens)*maxN)
	out = append(out, tokens...)
	for n := 2; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
