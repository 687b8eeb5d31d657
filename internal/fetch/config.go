package fetch

import (
	"strings"
	"time"

	"rtk/internal/config"
)

// NewFromConfig builds a Mux serving http(s), file, bare paths, and, when
// an endpoint is configured, s3.
func NewFromConfig(cfg *config.Config) (*Mux, error) {
	mux := NewMux()
	mux.Handle(NewHTTPFetcher(HTTPOptions{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		Token:     cfg.HTTP.Token,
		Headers:   cfg.HTTP.Headers,
	}), "http", "https")
	mux.Handle(FileFetcher{}, "file")

	if strings.TrimSpace(cfg.S3.Endpoint) != "" {
		s3, err := NewS3Fetcher(S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		mux.Handle(s3, "s3")
	}
	return mux, nil
}
