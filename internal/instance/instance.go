// Package instance enforces at-most-one daemon per runtime directory with an
// advisory file lock. The lock state is authoritative, not the file's
// presence: a stale file left by a crashed process does not block a new
// instance.
package instance

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning reports that another process holds the lock. It is an
// expected outcome signaling a live instance, not a failure.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard owns an exclusive lock on a file for the lifetime of the process.
type Guard struct {
	path    string
	lock    *flock.Flock
	release sync.Once
}

// Acquire takes a non-blocking exclusive lock on path, creating the file if
// absent. Returns ErrAlreadyRunning when the lock is held elsewhere.
func Acquire(path string) (*Guard, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return &Guard{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (g *Guard) Path() string {
	return g.path
}

// Release drops the lock and removes the backing file. Idempotent: only the
// first call has effect, regardless of which exit path reaches it.
func (g *Guard) Release() error {
	var err error
	g.release.Do(func() {
		if unlockErr := g.lock.Unlock(); unlockErr != nil {
			err = fmt.Errorf("release lock %s: %w", g.path, unlockErr)
			return
		}
		if rmErr := os.Remove(g.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("remove lock file %s: %w", g.path, rmErr)
		}
	})
	return err
}
