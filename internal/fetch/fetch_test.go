package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtk/internal/config"
	"rtk/internal/fileutil"
	"rtk/internal/services"
)

func TestHTTPFetcherSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "rtk-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization %q", got)
		}
		if got := r.Header.Get("X-Extra"); got != "yes" {
			t.Errorf("unexpected extra header %q", got)
		}
		_, _ = io.WriteString(w, "image-bytes")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "rtk-test", Token: "tok", Headers: map[string]string{"X-Extra": "yes"}})
	dest := filepath.Join(t.TempDir(), "dir", "f1.jpg")
	got, err := FetchTo(context.Background(), f, srv.URL+"/f1.jpg", dest)
	if err != nil {
		t.Fatalf("FetchTo: %v", err)
	}
	if got != dest {
		t.Fatalf("unexpected destination %q", got)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestHTTPFetcherClassifiesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	dest := filepath.Join(t.TempDir(), "out.jpg")

	_, err := FetchTo(context.Background(), f, srv.URL+"/missing", dest)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = FetchTo(context.Background(), f, srv.URL+"/busy", dest)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient, got %v", err)
	}
	if !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("expected body snippet in error, got %v", err)
	}
	if fileutil.Exists(dest) {
		t.Fatal("failed fetch must not create the target")
	}
}

type brokenFetcher struct{}

type brokenBody struct{ sent bool }

func (b *brokenBody) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func (b *brokenBody) Close() error { return nil }

func (brokenFetcher) Open(context.Context, string) (io.ReadCloser, error) {
	return &brokenBody{}, nil
}

func TestFetchToNeverLeavesPartialFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "f1.jpg")
	_, err := FetchTo(context.Background(), brokenFetcher{}, "http://example/f1.jpg", dest)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient read failure, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files after broken transfer, found %d", len(entries))
	}
}

func TestMuxRoutesByScheme(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "local.txt")
	if err := os.WriteFile(src, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}
	mux := NewMux().Handle(FileFetcher{}, "file")

	for _, uri := range []string{src, "file://" + src} {
		data, err := Bytes(context.Background(), mux, uri)
		if err != nil {
			t.Fatalf("Bytes(%q): %v", uri, err)
		}
		if string(data) != "local" {
			t.Fatalf("unexpected data %q", data)
		}
	}

	_, err := mux.Open(context.Background(), "ftp://example.org/x")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown scheme, got %v", err)
	}
	_, err = mux.Open(context.Background(), filepath.Join(dir, "missing.txt"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://scans/collection/f1.jpg")
	if err != nil {
		t.Fatalf("ParseS3URI: %v", err)
	}
	if bucket != "scans" || key != "collection/f1.jpg" {
		t.Fatalf("unexpected split %q %q", bucket, key)
	}
	for _, bad := range []string{"s3://bucket-only", "https://scans/f1.jpg", "s3:///key"} {
		if _, _, err := ParseS3URI(bad); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
}

func TestNewFromConfigRegistersS3WhenConfigured(t *testing.T) {
	cfg := config.Default()
	mux, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, ok := mux.schemes["s3"]; ok {
		t.Fatal("s3 must not be registered without an endpoint")
	}

	cfg.S3.Endpoint = "localhost:9000"
	cfg.S3.UseSSL = false
	mux, err = NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig with s3: %v", err)
	}
	for _, scheme := range []string{"http", "https", "file", "s3"} {
		if _, ok := mux.schemes[scheme]; !ok {
			t.Fatalf("expected %s fetcher", scheme)
		}
	}
}
