package task

import (
	"errors"
	"io/fs"
	"os"

	"rtk/internal/alto"
	"rtk/internal/fileutil"
	"rtk/internal/inputs"
)

// Oracle decides from the filesystem alone whether the output at path is
// complete.
type Oracle func(path string) bool

// Exists is satisfied by any regular file at path.
func Exists(path string) bool {
	return fileutil.Exists(path)
}

// Absent is satisfied when nothing exists at path.
func Absent(path string) bool {
	_, err := os.Lstat(path)
	return errors.Is(err, fs.ErrNotExist)
}

// Validated requires the file to exist and pass check.
func Validated(check func(path string) bool) Oracle {
	return func(path string) bool {
		return fileutil.Exists(path) && check(path)
	}
}

// ContentValidated checks ALTO output against a recognised-text threshold.
func ContentValidated(th alto.Threshold) Oracle {
	return Validated(func(path string) bool {
		return alto.CheckContent(path, th)
	})
}

// Chained consults secondary when primary is not satisfied, so a stage can
// be skipped when a later stage already holds its result.
func Chained(primary, secondary Oracle) Oracle {
	if secondary == nil {
		return primary
	}
	return func(path string) bool {
		return primary(path) || secondary(path)
	}
}

// Downstream evaluates oracle against path with its extension replaced by
// ext: the output of the stage that consumes this one.
func Downstream(ext string, oracle Oracle) Oracle {
	if oracle == nil {
		oracle = Exists
	}
	return func(path string) bool {
		return oracle(inputs.ChangeExt(path, ext))
	}
}
