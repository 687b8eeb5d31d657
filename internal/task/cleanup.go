package task

import (
	"context"

	"rtk/internal/alto"
	"rtk/internal/inputs"
)

// ALTOCleanup rewrites the fileName entries of ALTO files in place so they
// name the image relative to the ALTO file.
type ALTOCleanup struct{}

func (ALTOCleanup) Label() string { return "Normalizing ALTO" }

func (ALTOCleanup) Done(ref inputs.Ref) bool {
	return alto.FilenamesNormalized(ref.URI)
}

func (ALTOCleanup) Work(_ context.Context, ref inputs.Ref) error {
	return alto.NormalizeFilenames(ref.URI)
}

func (ALTOCleanup) Outputs(ref inputs.Ref) ([]inputs.Ref, error) {
	return []inputs.Ref{inputs.Path(ref.URI)}, nil
}
