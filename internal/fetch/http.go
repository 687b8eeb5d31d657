package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rtk/internal/services"
)

// HTTPOptions configures HTTPFetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	Token     string
	Headers   map[string]string
	Client    *http.Client
}

// HTTPFetcher retrieves http and https resources.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	token     string
	headers   map[string]string
}

// NewHTTPFetcher constructs an HTTP fetcher.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: strings.TrimSpace(opts.UserAgent),
		token:     strings.TrimSpace(opts.Token),
		headers:   headers,
	}
}

// Open issues a GET request and returns the response body on a 2xx status.
func (h *HTTPFetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "fetch", "build request", uri, err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrTransient, "fetch", "http get", uri, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		marker := services.ErrTransient
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			marker = services.ErrNotFound
		}
		message := fmt.Sprintf("%s returned %s", uri, resp.Status)
		if text := strings.TrimSpace(string(snippet)); text != "" {
			message += ": " + text
		}
		return nil, services.Wrap(marker, "fetch", "http get", message, nil)
	}
	return resp.Body, nil
}
