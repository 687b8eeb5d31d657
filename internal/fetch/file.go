package fetch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"rtk/internal/services"
)

// FileFetcher opens local paths and file:// URIs.
type FileFetcher struct{}

func (FileFetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := uri
	if strings.HasPrefix(strings.ToLower(uri), "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "fetch", "parse file uri", uri, err)
		}
		path = parsed.Path
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "fetch", "open", path, err)
		}
		return nil, services.Wrap(services.ErrTransient, "fetch", "open", path, err)
	}
	return f, nil
}
