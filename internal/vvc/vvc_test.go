package vvc

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/scaleinvariant/jjk/internal/gitwrap"
)

func newTestRepo(t *testing.T) *gitwrap.Repo {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	if err := os.WriteFile(filepath.Join(dir, "seed.txt"), []byte("seed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "jjb:0000-0000000::n: seed")
	return gitwrap.New(dir)
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	lock, err := Acquire(ctx, repo)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := Acquire(ctx, repo); err == nil {
		t.Fatal("second concurrent Acquire should fail while the first is held")
	}
	lock.Release(ctx)

	if lock2, err := Acquire(ctx, repo); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	} else {
		lock2.Release(ctx)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	boom := bytes.ErrTooLarge

	err := WithLock(ctx, repo, func(*Lock) error { return boom })
	if err != boom {
		t.Fatalf("WithLock error = %v, want %v", err, boom)
	}
	if _, err := Acquire(ctx, repo); err != nil {
		t.Fatalf("lock should be released after WithLock returns an error: %v", err)
	}
}

func TestMachineCommitRequiresLock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := MachineCommit(ctx, repo, nil, MachineArgs{Files: []string{"seed.txt"}, Message: "jjb:0000-0000000::n: x"}); err == nil {
		t.Fatal("MachineCommit with a nil lock should fail")
	}
}

func TestMachineCommitHappyPath(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(repo.Dir, "seed.txt"), []byte("seed\nmore\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WithLock(ctx, repo, func(lock *Lock) error {
		sha, err := MachineCommit(ctx, repo, lock, MachineArgs{
			Files:   []string{"seed.txt"},
			Message: "jjb:0000-0000000::n: update",
		})
		if err != nil {
			return err
		}
		if sha == "" {
			t.Fatal("expected a non-empty sha")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock/MachineCommit: %v", err)
	}
}

func TestMachineCommitGuardRejectsOversizedDiff(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	big := bytes.Repeat([]byte("x"), 60_000)
	if err := os.WriteFile(filepath.Join(repo.Dir, "seed.txt"), big, 0o644); err != nil {
		t.Fatal(err)
	}

	err := WithLock(ctx, repo, func(lock *Lock) error {
		_, err := MachineCommit(ctx, repo, lock, MachineArgs{
			Files:   []string{"seed.txt"},
			Message: "jjb:0000-0000000::n: too big",
		})
		return err
	})
	if err == nil {
		t.Fatal("expected the machine size guard to reject a 60KB diff")
	}
}

type stubGenerator struct{ summary string }

func (s stubGenerator) Generate(ctx context.Context, diff string) (string, error) {
	return s.summary, nil
}

func TestRunCommitUsesGeneratorWhenMessageEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(repo.Dir, "seed.txt"), []byte("seed\nchanged\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sha, err := RunCommit(ctx, repo, InteractiveArgs{
		Generator: stubGenerator{summary: "jjb:0000-0000000::n: generated summary"},
	})
	if err != nil {
		t.Fatalf("RunCommit: %v", err)
	}
	if sha == "" {
		t.Fatal("expected a non-empty sha")
	}
}

func TestRunCommitNothingStagedFails(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, err := RunCommit(ctx, repo, InteractiveArgs{Message: "jjb:0000-0000000::n: noop"})
	if err == nil {
		t.Fatal("RunCommit with nothing to stage should fail")
	}
}
