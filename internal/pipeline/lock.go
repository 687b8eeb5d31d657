package pipeline

import (
	"errors"
	"path/filepath"

	"github.com/gofrs/flock"

	"rtk/internal/services"
)

// LockFile is the advisory lock name inside the work directory.
const LockFile = ".rtk.lock"

// ErrLocked reports that another run holds the work directory.
var ErrLocked = errors.New("work directory locked by another run")

func acquire(workDir string) (*flock.Flock, error) {
	path := filepath.Join(workDir, LockFile)
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "pipeline", "lock", path, err)
	}
	if !locked {
		return nil, services.Wrap(ErrLocked, "pipeline", "lock", path, nil)
	}
	return lock, nil
}
