package task_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"rtk/internal/config"
	"rtk/internal/inputs"
	"rtk/internal/task"
	"rtk/internal/testsupport"
)

func TestPDFExtractRendersEveryPageOnce(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "book.pdf")
	testsupport.WritePDF(t, doc, 3)
	runner := &pageRunner{}

	def := config.Task{Name: "pages", Kind: config.KindPDFExtract}
	tk, err := task.Build(def, inputs.Paths([]string{doc}), task.Deps{Runner: runner})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	summary, err := tk.Process(context.Background())
	if err != nil || summary.Succeeded != 1 {
		t.Fatalf("Process: %+v %v", summary, err)
	}
	outputs, err := tk.OutputFiles()
	if err != nil {
		t.Fatalf("OutputFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "book", "f0.jpg"),
		filepath.Join(dir, "book", "f1.jpg"),
		filepath.Join(dir, "book", "f2.jpg"),
	}
	if got := uris(outputs); !reflect.DeepEqual(got, want) {
		t.Fatalf("outputs = %v, want %v", got, want)
	}
	if got := runner.Pages(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("rendered pages %v", got)
	}

	summary, err = tk.Process(context.Background())
	if err != nil || !summary.NothingToDo {
		t.Fatalf("expected nothing to process: %+v %v", summary, err)
	}
	if len(runner.Pages()) != 3 {
		t.Fatalf("pages rendered again: %v", runner.Pages())
	}
}

func TestPDFExtractRendersOnlyMissingPages(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "book.pdf")
	testsupport.WritePDF(t, doc, 3)
	outDir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(outDir, "book", "f1.jpg"), "jpeg")
	runner := &pageRunner{}

	def := config.Task{Name: "pages", Kind: config.KindPDFExtract, OutputDir: outDir, StartOn: 1}
	tk, err := task.Build(def, inputs.Paths([]string{doc}), task.Deps{Runner: runner})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := tk.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := runner.Pages(); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("expected only the third page, got %v", got)
	}
	if exists(filepath.Join(outDir, "book", "f0.jpg")) {
		t.Fatal("pages before start_on must not be rendered")
	}
}
