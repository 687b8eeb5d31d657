package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rtk/internal/services"
)

// S3Options configures S3Fetcher.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// S3Fetcher retrieves s3://bucket/key objects from an S3-compatible store.
type S3Fetcher struct {
	client *minio.Client
}

// NewS3Fetcher constructs a MinIO backed fetcher. Empty credentials select
// anonymous access.
func NewS3Fetcher(opts S3Options) (*S3Fetcher, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "s3 init", "s3.endpoint is empty", nil)
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "s3 init", "create MinIO client", err)
	}
	return &S3Fetcher{client: client}, nil
}

// Open streams the object named by uri.
func (s *S3Fetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "s3 get", uri, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if resp := minio.ToErrorResponse(err); resp.Code == minio.NoSuchKey || resp.Code == minio.NoSuchBucket {
			return nil, services.Wrap(services.ErrNotFound, "fetch", "s3 get", uri, err)
		}
		return nil, services.Wrap(services.ErrTransient, "fetch", "s3 stat", uri, err)
	}
	return obj, nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (string, string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || !strings.EqualFold(parsed.Scheme, "s3") {
		return "", "", services.Wrap(services.ErrValidation, "fetch", "parse s3 uri", fmt.Sprintf("%q is not an s3:// URI", uri), err)
	}
	key := strings.TrimLeft(parsed.Path, "/")
	if parsed.Host == "" || key == "" {
		return "", "", services.Wrap(services.ErrValidation, "fetch", "parse s3 uri", fmt.Sprintf("%q needs a bucket and a key", uri), nil)
	}
	return parsed.Host, key, nil
}

// Ping verifies that the endpoint is reachable and accepts the credentials.
func (s *S3Fetcher) Ping(ctx context.Context) error {
	if _, err := s.client.ListBuckets(ctx); err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "s3 ping", "list buckets", err)
	}
	return nil
}
