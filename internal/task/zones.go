package task

import (
	"context"
	"strings"

	"rtk/internal/alto"
	"rtk/internal/fileutil"
	"rtk/internal/inputs"
	"rtk/internal/services"
)

// ExtractZones writes the text of the configured ALTO zones next to each
// input as a .txt file. Inputs without matching text produce no file.
type ExtractZones struct {
	Zones []string
}

func (z *ExtractZones) Label() string { return "Extracting zones" }

// Output returns the text path for ref.
func (z *ExtractZones) Output(ref inputs.Ref) string {
	return inputs.ChangeExt(ref.URI, "txt")
}

func (z *ExtractZones) Done(ref inputs.Ref) bool {
	return Exists(z.Output(ref))
}

func (z *ExtractZones) Work(_ context.Context, ref inputs.Ref) error {
	text, err := alto.ExtractZones(ref.URI, z.Zones)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrNoOutput
	}
	if err := fileutil.WriteFileAtomic(z.Output(ref), []byte(text)); err != nil {
		return services.Wrap(services.ErrStorage, "extract-zones", "write", z.Output(ref), err)
	}
	return nil
}

func (z *ExtractZones) Outputs(ref inputs.Ref) ([]inputs.Ref, error) {
	return []inputs.Ref{inputs.Path(z.Output(ref))}, nil
}
