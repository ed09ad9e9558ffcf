package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := &consoleHandler{writer: &buf, level: slog.LevelInfo}
	logger := slog.New(handler).With(slog.String("component", "api"))

	logger.Info("request complete", slog.Int("status", 200), slog.String("path", "/api/status"))

	line := buf.String()
	for _, want := range []string{"INFO", "request complete", "component=api", "status=200", "path=/api/status"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line missing %q: %s", want, line)
		}
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	handler := &consoleHandler{writer: &buf, level: slog.LevelInfo}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	record.AddAttrs(slog.String("detail", "two words"))
	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(buf.String(), `detail="two words"`) {
		t.Fatalf("expected quoted value, got %s", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&consoleHandler{writer: &buf, level: slog.LevelWarn})

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("expected info line suppressed: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("expected warn line emitted: %s", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("noisy"); got != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v", got)
	}
}
