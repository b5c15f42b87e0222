// Package translate renders user text in the pivot language the models
// were trained on.
package translate

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cognicore/cinegenre/internal/config"
	"github.com/cognicore/cinegenre/internal/metrics"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// Translator renders text in the target language
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Provider names.
const (
	ProviderNone   = "none"
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// New builds the configured translator behind a circuit breaker. The none
// provider returns nil, which callers treat as "no translation".
func New(cfg config.TranslateConfig) (Translator, error) {
	var inner Translator
	switch cfg.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderGoogle:
		inner = &Google{
			Endpoint: cfg.Endpoint,
			Source:   cfg.Source,
			Target:   cfg.Target,
			Client:   &http.Client{Timeout: cfg.Timeout},
		}
	case ProviderOpenAI:
		key := cfg.OpenAIAPIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		inner = NewOpenAI(key, cfg.OpenAIModel, cfg.Source, cfg.Target)
	default:
		return nil, fmt.Errorf("%w: unknown translate provider %q", internalerr.ErrInvalidConfig, cfg.Provider)
	}

	return NewGuarded(cfg.Provider, inner, BreakerSettings{
		Failures: cfg.BreakerFailures,
		Timeout:  cfg.BreakerTimeout,
		Call:     cfg.Timeout,
	}), nil
}

// BreakerSettings configures a Guarded translator
type BreakerSettings struct {
	Failures uint32        // consecutive failures that open the circuit
	Timeout  time.Duration // how long the circuit stays open
	Call     time.Duration // per-call deadline; 0 disables it
}

// Guarded wraps a translator with a circuit breaker, a call deadline and
// metrics, so a dead backend fails fast.
type Guarded struct {
	name  string
	inner Translator
	cb    *gobreaker.CircuitBreaker[string]
	call  time.Duration
}

// NewGuarded wraps inner.
func NewGuarded(name string, inner Translator, s BreakerSettings) *Guarded {
	failures := s.Failures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
		},
	}

	return &Guarded{
		name:  name,
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[string](settings),
		call:  s.Call,
	}
}

// Translate implements Translator.
func (g *Guarded) Translate(ctx context.Context, text string) (string, error) {
	start := time.Now()
	out, err := g.cb.Execute(func() (string, error) {
		callCtx := ctx
		if g.call > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.call)
			defer cancel()
		}
		return g.inner.Translate(callCtx, text)
	})
	metrics.RecordTranslation(g.name, time.Since(start), err)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("provider", g.name).Str("breaker", g.cb.State().String()).Err(err).Msg("translation failed")
		return "", fmt.Errorf("translate %s: %w", g.name, err)
	}
	return out, nil
}

// State reports the breaker state.
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}
