// Package lock provides a general-purpose cross-process advisory file lock.
//
// It is distinct from the VCS-ref lock in internal/vvc: this lock protects
// local filesystem regions (e.g. the shared aggregation log that muster and
// saddle build from parallel subprocess output) and is not tied to git state.
package lock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Acquire opens a flock file and takes an exclusive, blocking lock.
// The returned cleanup function releases the lock and closes the file;
// callers should defer it immediately after a successful Acquire.
func Acquire(path string) (func(), error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring flock on %s: %w", path, err)
	}
	return func() {
		_ = fl.Unlock()
	}, nil
}

// TryAcquire is the non-blocking variant: it returns ok=false immediately
// if the lock is already held rather than waiting for it.
func TryAcquire(path string) (cleanup func(), ok bool, err error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("trying flock on %s: %w", path, err)
	}
	if !locked {
		return nil, false, nil
	}
	return func() {
		_ = fl.Unlock()
	}, true, nil
}
