package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"rtk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.HTTP.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithTasks replaces the task chain on the test config.
func WithTasks(tasks ...config.Task) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tasks = tasks
	}
}

// WithInputList writes entries to an input list file and points the
// pipeline at it.
func WithInputList(entries ...string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "inputs.txt")
		content := ""
		for _, entry := range entries {
			content += entry + "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.t.Fatalf("write input list: %v", err)
		}
		b.cfg.Pipeline.InputList = path
	}
}

// WithBatchSize overrides the pipeline batch size.
func WithBatchSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.BatchSize = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default recognition
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yaltai", "kraken"}
		}
		dir := StubBinDir(b.t, b.baseDir)
		for _, name := range names {
			WriteStub(b.t, dir, name, "exit 0")
		}
	}
}

// StubBinDir creates base/bin and prepends it to PATH for the test.
func StubBinDir(t testing.TB, base string) string {
	t.Helper()

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return binDir
}

// WriteStub writes an executable shell script named name into dir.
func WriteStub(t testing.TB, dir, name, body string) string {
	t.Helper()

	target := filepath.Join(dir, name)
	script := []byte("#!/bin/sh\n" + body + "\n")
	if err := os.WriteFile(target, script, 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}
