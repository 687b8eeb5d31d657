package task_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"rtk/internal/command"
	"rtk/internal/inputs"
)

// stubRunner emulates an external tool invoked as "tool % %out": it writes
// content to the output path unless the input's base name is listed in
// fail.
type stubRunner struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	content string
}

func (r *stubRunner) Run(_ context.Context, binary string, args []string) (string, error) {
	in, out := args[0], args[1]
	r.mu.Lock()
	r.calls = append(r.calls, filepath.Base(in))
	r.mu.Unlock()
	if r.fail[filepath.Base(in)] {
		return "segmentation fault in " + in, &command.ExitError{Binary: binary, Code: 2, Output: "segmentation fault in " + in}
	}
	content := r.content
	if content == "" {
		content = "<alto/>"
	}
	return "ok", os.WriteFile(out, []byte(content), 0o644)
}

func (r *stubRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// pageRunner emulates "mutool draw -r 300 -o %out % %page".
type pageRunner struct {
	mu    sync.Mutex
	pages []string
}

func (r *pageRunner) Run(_ context.Context, _ string, args []string) (string, error) {
	var out string
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			out = args[i+1]
		}
	}
	r.mu.Lock()
	r.pages = append(r.pages, args[len(args)-1])
	r.mu.Unlock()
	return "", os.WriteFile(out, []byte("jpeg"), 0o644)
}

func (r *pageRunner) Pages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pages...)
}

func touch(t *testing.T, dir string, names ...string) []inputs.Ref {
	t.Helper()
	refs := make([]inputs.Ref, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
		refs = append(refs, inputs.Path(path))
	}
	return refs
}

func bases(refs []inputs.Ref) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, filepath.Base(ref.URI))
	}
	sort.Strings(out)
	return out
}

func uris(refs []inputs.Ref) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.URI)
	}
	return out
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
