package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtk/internal/config"
)

func TestLoadDefaultConfigUsesEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("RTK_HTTP_TOKEN", "secret-token")
	t.Setenv("RTK_S3_ACCESS_KEY", "access")
	t.Setenv("RTK_S3_SECRET_KEY", "secret")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected absolute work dir, got %q", cfg.Paths.WorkDir)
	}
	if cfg.HTTP.Token != "secret-token" {
		t.Fatalf("expected token from env, got %q", cfg.HTTP.Token)
	}
	if cfg.S3.AccessKey != "access" || cfg.S3.SecretKey != "secret" {
		t.Fatalf("expected s3 credentials from env, got %q/%q", cfg.S3.AccessKey, cfg.S3.SecretKey)
	}
	if cfg.Pipeline.BatchSize != 100 {
		t.Fatalf("expected default batch size 100, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, ".config", "rtk", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected sample at %q, got %q (exists=%v)", path, resolved, exists)
	}
	wantWork := filepath.Join(tempHome, "rtk")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if len(cfg.Tasks) != 7 {
		t.Fatalf("expected 7 sample tasks, got %d", len(cfg.Tasks))
	}
	manifests, ok := cfg.TaskByName("manifests")
	if !ok {
		t.Fatal("expected manifests task")
	}
	if manifests.OutputDir != filepath.Join(wantWork, "manifests") {
		t.Fatalf("expected output dir resolved against work dir, got %q", manifests.OutputDir)
	}
	images, _ := cfg.TaskByName("images")
	if images.Downstream == nil || images.Downstream.Ext != "xml" {
		t.Fatalf("expected downstream xml check on images, got %+v", images.Downstream)
	}
	layout, _ := cfg.TaskByName("layout")
	if layout.Binary != "yaltai" || layout.Device != "cpu" || layout.OutputExt != "xml" {
		t.Fatalf("unexpected yaltai defaults: %+v", layout)
	}
	if got := cfg.EffectiveWorkers(layout); got != 1 {
		t.Fatalf("expected pipeline worker default, got %d", got)
	}
	if got := cfg.EffectiveWorkers(images); got != 8 {
		t.Fatalf("expected task workers, got %d", got)
	}
}

func TestLoadPipelineYAMLReplacesTasks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rtk.toml")
	writeFile(t, cfgPath, "[paths]\nwork_dir = \""+dir+"\"\n")

	pipelinePath := filepath.Join(dir, "pipeline.yaml")
	writeFile(t, pipelinePath, `pipeline:
  input_list: inputs.txt
  batch_size: 5
tasks:
  - kind: download
    output_prefix: images
    max_height: 1200
  - kind: command
    command: "tesseract % %out"
    output_ext: .hocr
    fail_fast: true
  - kind: clear
    from: download-1
`)

	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.LoadPipeline(pipelinePath); err != nil {
		t.Fatalf("LoadPipeline: %v", err)
	}
	if cfg.Pipeline.BatchSize != 5 {
		t.Fatalf("expected batch size 5, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.InputList != filepath.Join(dir, "inputs.txt") {
		t.Fatalf("unexpected input list %q", cfg.Pipeline.InputList)
	}
	if len(cfg.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(cfg.Tasks))
	}
	if cfg.Tasks[0].Name != "download-1" || cfg.Tasks[1].Name != "command-2" {
		t.Fatalf("unexpected generated names: %q %q", cfg.Tasks[0].Name, cfg.Tasks[1].Name)
	}
	if cfg.Tasks[1].OutputExt != "hocr" || !cfg.Tasks[1].FailFast {
		t.Fatalf("unexpected command task: %+v", cfg.Tasks[1])
	}
	if cfg.Tasks[0].OutputPrefix != filepath.Join(dir, "images") {
		t.Fatalf("unexpected output prefix %q", cfg.Tasks[0].OutputPrefix)
	}
}

func TestLoadPipelineTOML(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = dir

	path := filepath.Join(dir, "pipeline.toml")
	writeFile(t, path, `[pipeline]
workers = 3

[[tasks]]
name = "pages"
kind = "pdf-extract"
start_on = 2
`)
	if err := cfg.LoadPipeline(path); err != nil {
		t.Fatalf("LoadPipeline: %v", err)
	}
	if cfg.Pipeline.Workers != 3 || cfg.Tasks[0].StartOn != 2 {
		t.Fatalf("unexpected pipeline: %+v %+v", cfg.Pipeline, cfg.Tasks)
	}
}

func TestValidateRejectsInvalidTasks(t *testing.T) {
	cases := []struct {
		name  string
		tasks []config.Task
		want  string
	}{
		{
			name:  "unknown kind",
			tasks: []config.Task{{Name: "a", Kind: "teleport"}},
			want:  "not supported",
		},
		{
			name:  "both sizes",
			tasks: []config.Task{{Name: "a", Kind: config.KindDownload, MaxWidth: 10, MaxHeight: 10}},
			want:  "mutually exclusive",
		},
		{
			name:  "command without template",
			tasks: []config.Task{{Name: "a", Kind: config.KindCommand}},
			want:  "command must be set",
		},
		{
			name:  "preset without model",
			tasks: []config.Task{{Name: "a", Kind: config.KindKraken}},
			want:  "model must be set",
		},
		{
			name:  "zones missing",
			tasks: []config.Task{{Name: "a", Kind: config.KindExtractZones}},
			want:  "zones",
		},
		{
			name: "forward reference",
			tasks: []config.Task{
				{Name: "a", Kind: config.KindClear, From: "b"},
				{Name: "b", Kind: config.KindClear},
			},
			want: "earlier task",
		},
		{
			name: "duplicate names",
			tasks: []config.Task{
				{Name: "a", Kind: config.KindClear},
				{Name: "a", Kind: config.KindClear},
			},
			want: "more than once",
		},
		{
			name:  "ratio out of range",
			tasks: []config.Task{{Name: "a", Kind: config.KindCommand, Command: "x %out", MinRatio: 1.5}},
			want:  "min_ratio",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Tasks = tc.tasks
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestResolveJoinsRelativePaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = "/srv/rtk"
	if got := cfg.Resolve("images"); got != filepath.Join("/srv/rtk", "images") {
		t.Fatalf("unexpected relative resolution %q", got)
	}
	if got := cfg.Resolve("/data/x"); got != "/data/x" {
		t.Fatalf("unexpected absolute resolution %q", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
