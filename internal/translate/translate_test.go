package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cognicore/cinegenre/internal/config"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

const resultPage = `<html><body>
<div class="header">Google Translate</div>
<div class="result-container">A detective chases a killer</div>
</body></html>`

func TestGoogleTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sl") != "tr" || q.Get("tl") != "en" || q.Get("q") != "Bir dedektif katili kovalar" {
			t.Errorf("Unexpected query %v", q)
		}
		fmt.Fprint(w, resultPage)
	}))
	defer srv.Close()

	g := &Google{Endpoint: srv.URL, Source: "tr", Target: "en", Client: srv.Client()}
	out, err := g.Translate(context.Background(), "Bir dedektif katili kovalar")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "A detective chases a killer" {
		t.Errorf("Translate = %q", out)
	}
}

func TestGoogleErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"no result", http.StatusOK, "<html><body><p>captcha</p></body></html>"},
		{"empty result", http.StatusOK, `<div class="result-container">  </div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			g := &Google{Endpoint: srv.URL, Source: "tr", Target: "en", Client: srv.Client()}
			if _, err := g.Translate(context.Background(), "merhaba dünya"); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestGoogleEmptyInput(t *testing.T) {
	g := &Google{Endpoint: "http://127.0.0.1:1"}
	out, err := g.Translate(context.Background(), "   ")
	if err != nil || out != "   " {
		t.Errorf("Empty input should pass through, got %q, %v", out, err)
	}
}

type stubTranslator struct {
	calls atomic.Int32
	err   error
}

func (s *stubTranslator) Translate(ctx context.Context, text string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return "translated: " + text, nil
}

func TestGuardedOpensAfterFailures(t *testing.T) {
	stub := &stubTranslator{err: errors.New("backend down")}
	g := NewGuarded("stub", stub, BreakerSettings{Failures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := g.Translate(context.Background(), "text"); err == nil {
			t.Fatal("Expected failure")
		}
	}
	if g.State() != gobreaker.StateOpen {
		t.Fatalf("Breaker should be open, got %v", g.State())
	}

	_, err := g.Translate(context.Background(), "text")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if stub.calls.Load() != 3 {
		t.Errorf("Open breaker should not call the backend, got %d calls", stub.calls.Load())
	}
}

func TestGuardedPassesThrough(t *testing.T) {
	g := NewGuarded("stub", &stubTranslator{}, BreakerSettings{Call: time.Second})
	out, err := g.Translate(context.Background(), "merhaba")
	if err != nil || out != "translated: merhaba" {
		t.Errorf("Translate = %q, %v", out, err)
	}
}

const responseJSON = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 1700000000,
  "model": "gpt-4o-mini",
  "status": "completed",
  "output": [{
    "type": "message",
    "id": "msg_1",
    "role": "assistant",
    "status": "completed",
    "content": [{"type": "output_text", "text": "Two friends fall in love", "annotations": []}]
  }]
}`

func TestOpenAITranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/responses" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responseJSON)
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", "gpt-4o-mini", "tr", "en",
		option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	out, err := o.Translate(context.Background(), "İki arkadaş aşık olur")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "Two friends fall in love" {
		t.Errorf("Translate = %q", out)
	}
}

func TestOpenAIRequiresModel(t *testing.T) {
	o := NewOpenAI("sk-test", "", "tr", "en")
	if _, err := o.Translate(context.Background(), "metin"); err == nil {
		t.Error("Expected an error without a model")
	}
}

func TestNew(t *testing.T) {
	cfg := config.Default().Translate

	cfg.Provider = ProviderNone
	tr, err := New(cfg)
	if err != nil || tr != nil {
		t.Errorf("none provider should yield nil, got %v, %v", tr, err)
	}

	cfg.Provider = ProviderGoogle
	tr, err = New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*Guarded); !ok {
		t.Errorf("Expected a guarded translator, got %T", tr)
	}

	cfg.Provider = "babelfish"
	if _, err := New(cfg); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
