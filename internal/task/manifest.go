package task

import (
	"context"
	"errors"
	"io/fs"

	"rtk/internal/iiif"
	"rtk/internal/inputs"
	"rtk/internal/services"
)

// Resolver expands a manifest URI into image URIs.
type Resolver interface {
	Resolve(ctx context.Context, uri string) ([]string, error)
}

// Manifest expands each manifest input into an index file listing one
// (image URI, directory) row per canvas. The index is the durable record:
// outputs are always read back from it.
type Manifest struct {
	Resolver  Resolver
	OutputDir string
}

func (m *Manifest) Label() string { return "Resolving manifests" }

// IndexPath returns the index location for ref.
func (m *Manifest) IndexPath(ref inputs.Ref) string {
	return iiif.IndexPath(m.OutputDir, ref.URI)
}

func (m *Manifest) Done(ref inputs.Ref) bool {
	return Exists(m.IndexPath(ref))
}

func (m *Manifest) Work(ctx context.Context, ref inputs.Ref) error {
	uris, err := m.Resolver.Resolve(ctx, ref.URI)
	if err != nil {
		return err
	}
	return iiif.WriteIndex(m.IndexPath(ref), uris)
}

func (m *Manifest) Outputs(ref inputs.Ref) ([]inputs.Ref, error) {
	refs, err := iiif.ReadIndex(m.IndexPath(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if errors.Is(err, services.ErrValidation) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrStorage, "manifest", "read index", m.IndexPath(ref), err)
	}
	return refs, nil
}
