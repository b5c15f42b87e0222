package inference

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/cognicore/cinegenre/pkg/cinegenre/artifact"
	"github.com/cognicore/cinegenre/pkg/cinegenre/genreinfo"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/textnorm"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// MinDescriptionRunes is the shortest accepted description after trimming.
const MinDescriptionRunes = 10

// TopN is the number of ranked genres returned.
const TopN = 5

// Translator renders a description in the pivot language
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Ranked is one entry of the probability ranking
type Ranked struct {
	Group       string  `json:"genre"`
	Name        string  `json:"genre_tr"`
	Emoji       string  `json:"emoji"`
	Probability float64 `json:"probability"` // percent, two decimals
}

// Result is the outcome of one prediction
type Result struct {
	Group          string
	Name           string
	Emoji          string
	Description    string
	Confidence     float64 // percent, two decimals
	Top            []Ranked
	TranslatedText string
	OriginalText   string
}

type request struct {
	Text string `validate:"required,min=10"`
}

// Engine predicts genres with the currently loaded champion
type Engine struct {
	champion   atomic.Pointer[artifact.Champion]
	normalizer *textnorm.Normalizer
	translator Translator
	resolver   *genreinfo.Resolver
	validate   *validator.Validate
}

// Option configures an Engine
type Option func(*Engine)

// WithTranslator sets the pivot-language translator.
func WithTranslator(t Translator) Option {
	return func(e *Engine) { e.translator = t }
}

// WithResolver replaces the built-in genre metadata.
func WithResolver(r *genreinfo.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithNormalizer replaces the default text normalizer.
func WithNormalizer(n *textnorm.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// NewEngine creates an engine without a champion; Predict fails with
// internalerr.ErrModelUnavailable until Load is called.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		normalizer: textnorm.NewNormalizer(nil, nil),
		resolver:   genreinfo.Default(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load installs c as the champion used by subsequent predictions.
func (e *Engine) Load(c *artifact.Champion) {
	e.champion.Store(c)
}

// Champion returns the loaded champion or nil.
func (e *Engine) Champion() *artifact.Champion {
	return e.champion.Load()
}

// Ready reports whether a champion is loaded.
func (e *Engine) Ready() bool {
	return e.champion.Load() != nil
}

// Predict translates, normalizes and vectorizes description and ranks the
// champion's classes. Translation failures fall back to the original text.
func (e *Engine) Predict(ctx context.Context, description string) (Result, error) {
	original := strings.TrimSpace(description)
	if err := e.validate.Struct(request{Text: original}); err != nil {
		return Result{}, fmt.Errorf("%w: description must be at least %d characters", internalerr.ErrInvalidInput, MinDescriptionRunes)
	}

	c := e.champion.Load()
	if c == nil {
		return Result{}, internalerr.ErrModelUnavailable
	}

	translated := e.translate(ctx, original)
	x := c.Vectorizer.TransformOne(e.normalizer.Normalize(translated, textnorm.Inference))

	predicted := c.Estimator.Predict(x)
	probs := probabilities(c, x)
	info := e.resolver.Resolve(predicted)

	return Result{
		Group:          predicted,
		Name:           info.Name,
		Emoji:          info.Emoji,
		Description:    info.Description,
		Confidence:     percent(probs[predicted]),
		Top:            e.rank(probs),
		TranslatedText: translated,
		OriginalText:   original,
	}, nil
}

func (e *Engine) translate(ctx context.Context, text string) string {
	if e.translator == nil {
		return text
	}
	out, err := e.translator.Translate(ctx, text)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("translation failed, using original text")
		return text
	}
	if strings.TrimSpace(out) == "" {
		return text
	}
	return out
}

// probabilities maps each class to its probability using the capability
// resolved when the champion was loaded.
func probabilities(c *artifact.Champion, x vectorize.Vector) map[string]float64 {
	var p []float64
	if c.Capability != model.CapabilityNone {
		p = model.Probabilities(c.Estimator, x)
	}

	classes := c.Estimator.Classes()
	out := make(map[string]float64, len(p))
	for i, v := range p {
		if i < len(classes) {
			out[classes[i]] = v
		}
	}
	return out
}

func (e *Engine) rank(probs map[string]float64) []Ranked {
	groups := make([]string, 0, len(probs))
	for g := range probs {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if probs[groups[i]] != probs[groups[j]] {
			return probs[groups[i]] > probs[groups[j]]
		}
		return groups[i] < groups[j]
	})
	if len(groups) > TopN {
		groups = groups[:TopN]
	}

	out := make([]Ranked, len(groups))
	for i, g := range groups {
		info := e.resolver.Resolve(g)
		out[i] = Ranked{
			Group:       g,
			Name:        info.Name,
			Emoji:       info.Emoji,
			Probability: percent(probs[g]),
		}
	}
	return out
}

func percent(p float64) float64 {
	return math.Round(p*100*100) / 100
}
