package vvc

import (
	"context"

	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// LockRef is the well-known ref path the exclusive commit lock lives at.
const LockRef = "refs/vvg/locks/vvx"

// NullSHA is the ref value used in an empty repository with no HEAD yet.
const NullSHA = "0000000000000000000000000000000000000000"

// Lock is a scoped token proving the caller holds the exclusive VCS-ref
// lock. Acquire returns one; Release (called directly, or by WithLock) must
// run on every exit path — success, error, or panic.
type Lock struct {
	repo *gitwrap.Repo
}

// Acquire takes the exclusive lock by creating LockRef at the current HEAD
// SHA (or NullSHA in an empty repo). Ref creation is atomic
// create-if-absent, so a second concurrent Acquire fails with LockHeld.
func Acquire(ctx context.Context, repo *gitwrap.Repo) (*Lock, error) {
	sha, err := repo.Head(ctx)
	if err != nil {
		sha = NullSHA
	}
	if err := repo.UpdateRefCreate(ctx, LockRef, sha); err != nil {
		return nil, jjkerr.Wrap(jjkerr.LockHeld, "acquiring commit lock: already held", err)
	}
	return &Lock{repo: repo}, nil
}

// Release deletes the lock ref. Callers should defer this immediately after
// a successful Acquire.
func (l *Lock) Release(ctx context.Context) {
	_ = l.repo.DeleteRef(ctx, LockRef)
}

// WithLock acquires the lock, runs fn with the token, and releases the lock
// on every exit path including panics — the convenience entry point for a
// caller that needs only a single commit.
func WithLock(ctx context.Context, repo *gitwrap.Repo, fn func(*Lock) error) (err error) {
	lock, err := Acquire(ctx, repo)
	if err != nil {
		return err
	}
	defer lock.Release(ctx)
	return fn(lock)
}
