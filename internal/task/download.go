package task

import (
	"context"
	"path/filepath"

	"rtk/internal/fetch"
	"rtk/internal/fileutil"
	"rtk/internal/iiif"
	"rtk/internal/inputs"
	"rtk/internal/services"
)

// Download fetches one resource per input to
// {prefix}/{Dir}/{Name}.jpg. Name defaults to the IIIF identifier of the
// URI, then to a hash of it.
type Download struct {
	Fetcher   fetch.Fetcher
	Prefix    string
	MaxWidth  int
	MaxHeight int
	// Oracle overrides the completion check; nil means Exists.
	Oracle Oracle
}

func (d *Download) Label() string { return "Downloading" }

// Target returns the output path for ref.
func (d *Download) Target(ref inputs.Ref) string {
	name := ref.Name
	if name == "" {
		name = inputs.IIIFIdentifier(ref.URI)
	}
	if name == "" {
		name = inputs.ShortHash(ref.URI)
	}
	return filepath.Join(d.Prefix, ref.Dir, name+".jpg")
}

func (d *Download) oracle() Oracle {
	if d.Oracle != nil {
		return d.Oracle
	}
	return Exists
}

func (d *Download) Done(ref inputs.Ref) bool {
	return d.oracle()(d.Target(ref))
}

func (d *Download) Work(ctx context.Context, ref inputs.Ref) error {
	uri, err := iiif.SizedImageURL(ref.URI, d.MaxWidth, d.MaxHeight)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "download", "size image", ref.URI, err)
	}
	_, err = fetch.FetchTo(ctx, d.Fetcher, uri, d.Target(ref))
	return err
}

func (d *Download) Outputs(ref inputs.Ref) ([]inputs.Ref, error) {
	return []inputs.Ref{inputs.Path(d.Target(ref))}, nil
}

// Recover deletes the target and any in-progress transfer for ref.
func (d *Download) Recover(ref inputs.Ref) {
	target := d.Target(ref)
	_ = fileutil.RemoveIfExists(target)
	fileutil.RemovePartials(target)
}
