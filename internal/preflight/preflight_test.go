package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtk/internal/config"
	"rtk/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := testsupport.WriteStub(t, binDir, "present", "exit 0")

	results := CheckBinaries([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Broken", Description: "invalid command definition"},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary reported, got %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "invalid command definition" {
		t.Fatalf("expected unconfigured command reported, got %#v", results[2])
	}
}

func TestTaskRequirements(t *testing.T) {
	cfg := config.Default()
	cfg.Tasks = []config.Task{
		{Name: "images", Kind: config.KindDownload},
		{Name: "ocr", Kind: config.KindKraken, Model: "/models/catmus.mlmodel"},
		{Name: "seg", Kind: config.KindCommand, Command: "/opt/seg/bin/segment %  %out"},
		{Name: "again", Kind: config.KindCommand, Command: "kraken -i % %out"},
		{Name: "pages", Kind: config.KindPDFExtract},
		{Name: "bad", Kind: config.KindCommand, Command: "tool %"},
	}

	reqs := TaskRequirements(&cfg)
	var commands []string
	for _, r := range reqs {
		commands = append(commands, r.Command)
	}
	got := strings.Join(commands, ",")
	if got != "kraken,/opt/seg/bin/segment,mutool," {
		t.Fatalf("unexpected requirements %q", got)
	}
	if reqs[3].Name != "bad" {
		t.Fatalf("expected invalid task reported, got %#v", reqs[3])
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTasks(
		config.Task{Name: "ocr", Kind: config.KindCommand, Command: "rtk-missing-tool % %out"},
	))

	results := RunAll(context.Background(), cfg)
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "ocr" {
		t.Fatalf("expected only the missing binary to fail, got %#v", results)
	}
}

func TestRunAll_StubbedBinariesPass(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries("kraken"),
		testsupport.WithTasks(config.Task{Name: "ocr", Kind: config.KindKraken, Model: "/models/m.mlmodel"}),
	)
	for _, r := range RunAll(context.Background(), cfg) {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestCheckS3_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := CheckS3(context.Background(), config.S3{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "us-east-1",
	})
	if result.Passed {
		t.Fatal("expected failure for rejected credentials")
	}
}

func TestCheckS3_MissingEndpoint(t *testing.T) {
	if result := CheckS3(context.Background(), config.S3{}); result.Passed {
		t.Fatal("expected failure for empty endpoint")
	}
}
