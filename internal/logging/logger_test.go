package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtk/internal/config"
	"rtk/internal/logging"
	"rtk/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "rtk.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Fatalf("expected message in log file, got %q", data)
	}
}

func TestConsoleHandlerRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "task")
	logger.Info("nothing to process", logging.Int("inputs", 3), logging.String("path", "a b"))

	line := buf.String()
	if !strings.Contains(line, "INFO task: nothing to process") {
		t.Fatalf("unexpected console line %q", line)
	}
	if !strings.Contains(line, "inputs=3") {
		t.Fatalf("expected inputs field, got %q", line)
	}
	if !strings.Contains(line, `path="a b"`) {
		t.Fatalf("expected quoted path, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed, got %q", buf.String())
	}
}

func TestJSONHandlerUsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("checked", logging.Int("done", 2))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "abc")
	ctx = services.WithBatch(services.WithTask(ctx, "download"), 2)
	logging.WithContext(ctx, logging.NewComponentLogger(base, "task")).Info("started")

	line := buf.String()
	for _, want := range []string{"INFO #2 task/download: started", "run_id=abc"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestConsoleHandlerIndentsCommandOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("item failed",
		logging.Int("exit_code", 2),
		logging.String(logging.FieldCommandOutput, "loading model\nsegmentation fault"),
	)

	out := buf.String()
	if !strings.Contains(out, "item failed exit_code=2\n    | loading model\n    | segmentation fault\n") {
		t.Fatalf("expected indented output block, got %q", out)
	}

	buf.Reset()
	logger.Warn("item failed", logging.String(logging.FieldCommandOutput, "single line"))
	if !strings.Contains(buf.String(), `command_output="single line"`) {
		t.Fatalf("single-line output should stay inline, got %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logging.NewNop().Error("ignored")
	logging.WarnWithContext(nil, "ignored", "noop")
}
