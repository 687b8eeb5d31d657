package iiif

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"rtk/internal/fetch"
	"rtk/internal/inputs"
	"rtk/internal/services"
)

const manifestV3 = `{
  "@context": "http://iiif.io/api/presentation/3/context.json",
  "type": "Manifest",
  "items": [
    {"type": "Canvas", "items": [{"type": "AnnotationPage", "items": [{"type": "Annotation", "body": {"id": "https://img.example.org/iiif/a/full/full/0/default.jpg", "type": "Image"}}]}]},
    {"type": "Canvas", "items": [{"type": "AnnotationPage", "items": [{"type": "Annotation", "body": {"type": "Choice", "items": [{"id": "https://img.example.org/iiif/b/full/full/0/default.jpg"}, {"id": "https://img.example.org/iiif/b-alt/full/full/0/default.jpg"}]}}]}]},
    {"type": "Canvas", "items": [{"type": "AnnotationPage", "items": [{"type": "Annotation", "body": [{"id": "https://img.example.org/iiif/c/full/full/0/default.jpg"}]}]}]},
    {"type": "Canvas", "items": []}
  ]
}`

const manifestV2 = `{
  "@context": "http://iiif.io/api/presentation/2/context.json",
  "@type": "sc:Manifest",
  "sequences": [{
    "canvases": [
      {"images": [{"resource": {"@id": "https://gallica.example.org/iiif/ark/f1/full/full/0/native.jpg"}}]},
      {"images": [{"resource": {"@id": "https://gallica.example.org/iiif/ark/f2/full/full/0/native.jpg"}}]}
    ]
  }]
}`

func TestParseV3(t *testing.T) {
	got, err := Parse([]byte(manifestV3))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{
		"https://img.example.org/iiif/a/full/full/0/default.jpg",
		"https://img.example.org/iiif/b/full/full/0/default.jpg",
		"https://img.example.org/iiif/c/full/full/0/default.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse v3 = %v, want %v", got, want)
	}
}

func TestParseV2(t *testing.T) {
	got, err := Parse([]byte(manifestV2))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 || got[1] != "https://gallica.example.org/iiif/ark/f2/full/full/0/native.jpg" {
		t.Fatalf("unexpected v2 parse %v", got)
	}
}

func TestParseRejectsUnknownDocuments(t *testing.T) {
	for _, doc := range []string{`not json`, `{"label": "x"}`} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", doc, err)
		}
	}
}

func TestSizedImageURL(t *testing.T) {
	uri := "https://img.example.org/iiif/a/full/full/0/default.jpg"
	got, err := SizedImageURL(uri, 1000, 0)
	if err != nil || got != "https://img.example.org/iiif/a/full/1000,/0/default.jpg" {
		t.Fatalf("width: %q %v", got, err)
	}
	got, err = SizedImageURL(uri, 0, 800)
	if err != nil || got != "https://img.example.org/iiif/a/full/,800/0/default.jpg" {
		t.Fatalf("height: %q %v", got, err)
	}
	got, err = SizedImageURL(uri, 0, 0)
	if err != nil || got != uri {
		t.Fatalf("unbounded: %q %v", got, err)
	}
	if _, err := SizedImageURL(uri, 1, 1); err == nil {
		t.Fatal("expected error when both bounds are set")
	}
}

func TestIndexRoundTripFromDisk(t *testing.T) {
	dir := t.TempDir()
	manifestURI := "https://example.org/iiif/ark/manifest.json"
	path := IndexPath(dir, manifestURI)
	if filepath.Base(path) != inputs.ShortHash(manifestURI)+".csv" {
		t.Fatalf("unexpected index path %q", path)
	}
	uris := []string{"https://x/a,b/full/full/0/default.jpg", "https://x/c/full/full/0/default.jpg"}
	if err := WriteIndex(path, uris); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	refs, err := ReadIndex(path)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	stem := inputs.ShortHash(manifestURI)
	want := []inputs.Ref{inputs.Pair(uris[0], stem), inputs.Pair(uris[1], stem)}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("ReadIndex = %v, want %v", refs, want)
	}
}

func TestReadIndexAcceptsNameColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.csv")
	if err := os.WriteFile(path, []byte("https://x/1.jpg,abc,page-1\nhttps://x/2.jpg,abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	refs, err := ReadIndex(path)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(refs) != 2 || refs[0].Name != "page-1" || refs[1].Name != "" {
		t.Fatalf("unexpected refs %+v", refs)
	}
}

func TestResolverFetchesManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(manifestV2))
	}))
	defer srv.Close()

	r := NewResolver(fetch.NewHTTPFetcher(fetch.HTTPOptions{}))
	got, err := r.Resolve(context.Background(), srv.URL+"/manifest.json")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 images, got %v", got)
	}
}
