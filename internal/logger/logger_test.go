package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   string
		contains string
	}{
		{"json", "json", `"key":"value"`},
		{"json upper case", "JSON", `"level":"INFO"`},
		{"text", "text", "key=value"},
		{"unknown falls back to text", "pretty", "level=INFO"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			Open(&buf, "info", tc.format).Info("hello", "key", "value")

			if !strings.Contains(buf.String(), tc.contains) {
				t.Fatalf("expected %q in output, got: %s", tc.contains, buf.String())
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Open(&buf, "warn", "json")
	log.Info("should not appear")
	log.Debug("also should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("component", "scan").WithGroup("image")
	log.Info("detected", "format", "png")

	output := buf.String()
	if !strings.Contains(output, `"component":"scan"`) {
		t.Fatalf("expected component attribute, got: %s", output)
	}
	if !strings.Contains(output, `"image":{"format":"png"}`) {
		t.Fatalf("expected grouped attribute, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("roundtrip test")

	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger returned nil")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	// Must not panic.
	Discard().Error("dropped", "key", 1)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
