package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"":        slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	NewWithWriter(&text, "info", "text").With("component", "pipeline").Info("stage done")
	if !strings.Contains(text.String(), "component=pipeline") {
		t.Fatalf("expected text attrs, got %s", text.String())
	}

	var js bytes.Buffer
	NewWithWriter(&js, "info", "json").Info("stage done", "stage", "analysis")
	if !strings.Contains(js.String(), `"stage":"analysis"`) {
		t.Fatalf("expected json attrs, got %s", js.String())
	}

	var filtered bytes.Buffer
	NewWithWriter(&filtered, "error", "text").Info("hidden")
	if filtered.Len() != 0 {
		t.Fatalf("info should be filtered at error level, got %s", filtered.String())
	}
}
