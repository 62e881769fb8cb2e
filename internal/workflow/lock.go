package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrOutputLocked reports that another process is writing the same output.
var ErrOutputLocked = errors.New("output is locked by another export")

func lockPath(output string) string {
	return filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".lock")
}

// acquireOutputLock takes a non-blocking exclusive lock next to output. The
// returned release function unlocks and removes the lock file.
func acquireOutputLock(output string) (func(), error) {
	path := lockPath(output)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, output)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(path)
	}, nil
}
