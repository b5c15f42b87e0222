package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func capture(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(DefaultConfig()) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitJSON(t *testing.T) {
	buf := capture(t, Config{Level: "warn", Format: "json"})

	Info().Msg("hidden")
	Warn().Str("model", "SVM").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"model":"SVM"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("Unexpected output: %s", out)
	}
}

func TestWithContext(t *testing.T) {
	buf := capture(t, Config{Level: "info"})

	ctx := WithContext(context.Background())
	zerolog.Ctx(ctx).Info().Msg("from library")

	if !strings.Contains(buf.String(), "from library") {
		t.Errorf("zerolog.Ctx should use the attached logger, got %q", buf.String())
	}
}

func TestContextWithRequestID(t *testing.T) {
	buf := capture(t, Config{Level: "info"})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	if RequestIDFromContext(ctx) != "req-1" {
		t.Fatalf("Request ID not stored")
	}

	zerolog.Ctx(ctx).Info().Msg("tagged")
	Ctx(ctx).Info().Msg("tagged again")

	if strings.Count(buf.String(), `"request_id":"req-1"`) != 2 {
		t.Errorf("Expected both events tagged, got %s", buf.String())
	}

	if RequestIDFromContext(context.Background()) != "" {
		t.Error("Empty context should have no request ID")
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("Request IDs should be unique")
	}
}
