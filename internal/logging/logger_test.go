package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleHandler_ComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	NewComponentLogger(logger, "clip").Info("clip ready",
		slog.String(FieldEntry, "2024_final #01 SWE"),
		slog.Group("tool", slog.String("name", "ffmpeg")),
		slog.Any("error", errors.New("boom")),
	)
	line := buf.String()
	for _, want := range []string{"INFO", "clip: clip ready", `entry="2024_final #01 SWE"`, "tool.name=ffmpeg", "error=boom"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("buffer output must not be colorized: %q", line)
	}
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("done", slog.Int("recaps", 2))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["level"] != "info" || rec["msg"] != "done" || rec["recaps"] != float64(2) {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["ts"]; !ok {
		t.Fatalf("missing ts: %v", rec)
	}
}

func TestNew_LogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	logger, closer, err := New(Options{LogDir: dir, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("to file")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "recap.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Fatalf("log file content: %q", b)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewNop(t *testing.T) {
	NewNop().Error("dropped")
	NewComponentLogger(nil, "x").Info("dropped")
}
