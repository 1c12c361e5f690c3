package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message should be logged at warn level")
	}
}

func TestWithOperationAndAccount(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")
	logger = WithOperation(logger, "list")
	logger = WithAccount(logger, "work")

	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "operation=list") {
		t.Errorf("expected operation attribute, got %q", out)
	}
	if !strings.Contains(out, "account=work") {
		t.Errorf("expected account attribute, got %q", out)
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	logger.Info("with error", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error attribute, got %q", buf.String())
	}

	buf.Reset()
	logger.Info("without error", Err(nil))
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error should add no attribute, got %q", buf.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(empty) = %q", got)
	}
	got := SanitizeToken("super-secret-token")
	if strings.Contains(got, "secret") {
		t.Errorf("SanitizeToken leaked token content: %q", got)
	}
	if got != "[token:18 chars]" {
		t.Errorf("SanitizeToken() = %q", got)
	}
}
