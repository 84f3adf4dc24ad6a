package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "hello") {
		t.Fatalf("expected 'hello' in output, got: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Fatalf("expected key=value in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", output)
	}
}

func TestTextLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output for info/debug at warn level, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestWithAndGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo).With("kernel", "slice").WithGroup("launch")
	log.Info("done", "units", 64)

	output := buf.String()
	if !strings.Contains(output, "kernel=slice") {
		t.Fatalf("expected kernel attr, got: %s", output)
	}
	if !strings.Contains(output, "launch.units=64") {
		t.Fatalf("expected grouped attr, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	log := Discard()
	ctx := WithContext(context.Background(), log)
	if FromContext(ctx) != log {
		t.Fatal("FromContext should return the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext should fall back to a default logger")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
