package gitwrap

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "init", "-q")
	run(t, dir, "config", "user.email", "test@example.com")
	run(t, dir, "config", "user.name", "Test")
	return New(dir)
}

func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestShortHeadUnknownCommitOnEmptyRepo(t *testing.T) {
	repo := newTestRepo(t)
	if got := repo.ShortHead(context.Background(), 7); got != UnknownCommit {
		t.Fatalf("ShortHead on empty repo = %q, want %q", got, UnknownCommit)
	}
}

func TestCommitAndHead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(repo.Dir, "a.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddAll(ctx); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	sha, err := repo.Commit(ctx, "jjb:0000-0000000::n: initial")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if sha == "" {
		t.Fatal("Commit returned empty sha")
	}
	head, err := repo.Head(ctx)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != sha {
		t.Fatalf("Head() = %s, want %s", head, sha)
	}
}

func TestUpdateRefCreateRejectsSecondCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const ref = "refs/vvg/locks/vvx"
	sha, ok := repo.ShowRef(ctx, "HEAD")
	if ok {
		t.Fatalf("expected no HEAD yet, got %s", sha)
	}
	// git only lets a ref point at an object that exists, so the lock ref is
	// created at a real commit rather than at the short UnknownCommit marker.
	if err := os.WriteFile(filepath.Join(repo.Dir, "a.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddAll(ctx); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	head, err := repo.Commit(ctx, "jjb:0000-0000000::n: initial")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := repo.UpdateRefCreate(ctx, ref, head); err != nil {
		t.Fatalf("first UpdateRefCreate: %v", err)
	}
	if err := repo.UpdateRefCreate(ctx, ref, head); err == nil {
		t.Fatal("second UpdateRefCreate on an existing ref should fail")
	}
	if err := repo.DeleteRef(ctx, ref); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if err := repo.UpdateRefCreate(ctx, ref, head); err != nil {
		t.Fatalf("UpdateRefCreate after delete: %v", err)
	}
}

func TestStagedFilesAndHasStagedChanges(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if repo.HasStagedChanges(ctx) {
		t.Fatal("fresh repo should have no staged changes")
	}
	if err := os.WriteFile(filepath.Join(repo.Dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddFiles(ctx, []string{"a.txt"}); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if !repo.HasStagedChanges(ctx) {
		t.Fatal("expected staged changes after AddFiles")
	}
	files, err := repo.StagedFiles(ctx)
	if err != nil {
		t.Fatalf("StagedFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "a.txt" {
		t.Fatalf("StagedFiles = %v, want [a.txt]", files)
	}
}

func TestCommitAllowEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(repo.Dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddAll(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit(ctx, "jjb:0000-0000000::n: initial"); err != nil {
		t.Fatal(err)
	}
	sha, err := repo.CommitAllowEmpty(ctx, "jjb:0000-0000000::A: marker")
	if err != nil {
		t.Fatalf("CommitAllowEmpty: %v", err)
	}
	if sha == "" {
		t.Fatal("expected a sha for the empty commit")
	}
}
