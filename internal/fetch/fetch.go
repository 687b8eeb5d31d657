package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"rtk/internal/fileutil"
	"rtk/internal/services"
)

// maxBytes bounds in-memory reads of documents such as IIIF manifests.
const maxBytes = 64 << 20

// Fetcher opens a remote or local resource for reading.
type Fetcher interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Mux routes URIs to fetchers by scheme. URIs without a scheme are treated
// as local paths.
type Mux struct {
	schemes map[string]Fetcher
}

// NewMux returns an empty router.
func NewMux() *Mux {
	return &Mux{schemes: make(map[string]Fetcher)}
}

// Handle registers f for the given schemes.
func (m *Mux) Handle(f Fetcher, schemes ...string) *Mux {
	for _, scheme := range schemes {
		m.schemes[strings.ToLower(scheme)] = f
	}
	return m
}

// Open dispatches to the fetcher registered for the URI scheme.
func (m *Mux) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	scheme := schemeOf(uri)
	f, ok := m.schemes[scheme]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "route", fmt.Sprintf("No fetcher for scheme %q", scheme), nil)
	}
	return f.Open(ctx, uri)
}

func schemeOf(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || len(parsed.Scheme) < 2 {
		// Single letter schemes are Windows drive letters.
		return "file"
	}
	return strings.ToLower(parsed.Scheme)
}

// FetchTo downloads uri into dest atomically and returns dest. A partially
// transferred resource never appears at dest. Source failures are transient;
// failures writing to local storage carry services.ErrStorage.
func FetchTo(ctx context.Context, f Fetcher, uri, dest string) (string, error) {
	body, err := f.Open(ctx, uri)
	if err != nil {
		return "", err
	}
	defer body.Close()

	src := &trackingReader{r: body}
	if _, err := fileutil.WriteAtomic(dest, src); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if src.err != nil {
			return "", services.Wrap(services.ErrTransient, "fetch", "read", uri, src.err)
		}
		return "", services.Wrap(services.ErrStorage, "fetch", "write", dest, err)
	}
	return dest, nil
}

// Bytes reads the whole resource into memory.
func Bytes(ctx context.Context, f Fetcher, uri string) ([]byte, error) {
	body, err := f.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrTransient, "fetch", "read", uri, err)
	}
	if len(data) > maxBytes {
		return nil, services.Wrap(services.ErrValidation, "fetch", "read", fmt.Sprintf("%s exceeds %d bytes", uri, maxBytes), nil)
	}
	return data, nil
}

// trackingReader remembers read-side errors so FetchTo can tell a broken
// source from a failing disk.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		t.err = err
	}
	return n, err
}
