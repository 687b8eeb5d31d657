package task

import (
	"context"
	"errors"
	"fmt"

	"rtk/internal/command"
	"rtk/internal/fileutil"
	"rtk/internal/inputs"
	"rtk/internal/services"
)

// Command runs an external program per input, writing
// change_ext(input, Ext).
type Command struct {
	Template command.Template
	Runner   command.Runner
	Ext      string
	// Oracle overrides the completion check; nil means Exists.
	Oracle Oracle
}

func (c *Command) Label() string { return "Running " + c.Template.Binary() }

// Output returns the output path for ref.
func (c *Command) Output(ref inputs.Ref) string {
	return inputs.ChangeExt(ref.URI, c.Ext)
}

func (c *Command) oracle() Oracle {
	if c.Oracle != nil {
		return c.Oracle
	}
	return Exists
}

func (c *Command) Done(ref inputs.Ref) bool {
	return c.oracle()(c.Output(ref))
}

func (c *Command) Work(ctx context.Context, ref inputs.Ref) error {
	binary, args := c.Template.Args(ref.URI, c.Output(ref))
	if _, err := c.Runner.Run(ctx, binary, args); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		line := c.Template.Render(ref.URI, c.Output(ref))
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) {
			return services.Wrap(services.ErrExternalTool, "command", "run",
				fmt.Sprintf("%s: exit status %d", line, exitErr.Code), err)
		}
		return services.Wrap(services.ErrExternalTool, "command", "run", line, err)
	}
	return nil
}

func (c *Command) Outputs(ref inputs.Ref) ([]inputs.Ref, error) {
	return []inputs.Ref{inputs.Path(c.Output(ref))}, nil
}

// Recover deletes output left behind by a failed or interrupted run. Output
// that overwrites its own input is kept.
func (c *Command) Recover(ref inputs.Ref) {
	if out := c.Output(ref); out != ref.URI {
		_ = fileutil.RemoveIfExists(out)
	}
}
