package inputs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIIIFIdentifier(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"https://iiif.example.org/iiif/btv1b84/f1/full/full/0/default.jpg", "f1"},
		{"https://iiif.example.org/image/abc123/full/max/0/default.png", "abc123"},
		{"https://iiif.example.org/iiif/ms12/pct:10,10,80,80/!800,600/90/gray.tif?x=1", "ms12"},
		{"https://iiif.example.org/iiif/ms12/0,0,100,100/^max/!180/bitonal.webp", "ms12"},
		{"short/path", ""},
		{"https://example.org/a/b/c/one.jpg", ""},
		{"https://example.org/full/full/0/default.jpg", ""},
		{"https://example.org/iiif/x/full/full/0/thumbnail.jpg", ""},
	}
	for _, tt := range tests {
		if got := IIIFIdentifier(tt.uri); got != tt.want {
			t.Fatalf("IIIFIdentifier(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestChangeExt(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"/a/b/page.jpg", "xml", "/a/b/page.xml"},
		{"/a/b/page.jpg", ".txt", "/a/b/page.txt"},
		{"/a/b.d/page", "xml", "/a/b.d/page.xml"},
		{"page.tar.gz", "xml", "page.tar.xml"},
	}
	for _, tt := range tests {
		if got := ChangeExt(tt.path, tt.ext); got != tt.want {
			t.Fatalf("ChangeExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestShortHashIsStable(t *testing.T) {
	a := ShortHash("https://example.org/manifest.json")
	b := ShortHash("https://example.org/manifest.json")
	if a != b || len(a) != 10 {
		t.Fatalf("unexpected short hash %q / %q", a, b)
	}
	if a == ShortHash("https://example.org/other.json") {
		t.Fatal("expected distinct hashes")
	}
}

func TestReadListAndBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	content := "a b\n c\n\n d\te\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := ReadList(path)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if len(entries) != 5 || entries[4] != "e" {
		t.Fatalf("unexpected entries %v", entries)
	}
	batches := Batch(entries, 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[2]) != 1 || batches[2][0] != "e" {
		t.Fatalf("unexpected last batch %v", batches[2])
	}
	if got := Batch([]string(nil), 10); len(got) != 0 {
		t.Fatalf("expected no batches for empty input, got %v", got)
	}
}

func TestRefIsComparable(t *testing.T) {
	m := map[Ref]bool{Pair("u", "d"): true}
	if !m[Pair("u", "d")] || m[Path("u")] {
		t.Fatal("unexpected map lookup semantics")
	}
}
