package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level string) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(&consoleHandler{writer: &syncWriter{w: buf}, level: levelVar})
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, "info")

	logger.Info("filter command applied",
		String(FieldPhase, "daytime"),
		Bool("filter_enabled", false),
		Duration("wait", 90*time.Second),
	)

	line := buf.String()
	for _, want := range []string{"INFO", "filter command applied", "phase=daytime", "filter_enabled=false", "wait=1m30s"} {
		if !strings.Contains(line, want) {
			t.Errorf("output %q missing %q", line, want)
		}
	}
}

func TestConsoleHandlerComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(newTestLogger(&buf, "info"), "scheduler")

	logger.Info("sleeping until next boundary")

	line := buf.String()
	if !strings.Contains(line, "scheduler: sleeping until next boundary") {
		t.Errorf("output %q missing component prefix", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component attr should be folded into the prefix: %q", line)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, "warn")

	logger.Info("suppressed")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "suppressed") {
		t.Errorf("info record emitted at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should not be enabled at any level")
	}
}
