package task

import (
	"context"

	"rtk/internal/fileutil"
	"rtk/internal/inputs"
)

// Clear deletes its inputs. It is done once the file is gone and never
// produces outputs.
type Clear struct{}

func (Clear) Label() string { return "Removing files" }

func (Clear) Done(ref inputs.Ref) bool {
	return Absent(ref.URI)
}

// Work removes the file; failures are ignored and show up in the next
// check instead.
func (Clear) Work(_ context.Context, ref inputs.Ref) error {
	_ = fileutil.RemoveIfExists(ref.URI)
	return nil
}

func (Clear) Outputs(inputs.Ref) ([]inputs.Ref, error) {
	return nil, nil
}
