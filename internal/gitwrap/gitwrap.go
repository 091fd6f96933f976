// Package gitwrap is a thin wrapper over the git CLI, invoked via
// os/exec rather than a git library — matching the house style of shelling
// out to the real git binary for every VCS operation.
package gitwrap

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// UnknownCommit is returned by ShortHead when HEAD cannot be resolved (e.g.
// outside a git repository, or in a freshly initialized repo with no
// commits yet).
const UnknownCommit = "0000000"

// Repo targets a single git working tree.
type Repo struct {
	Dir string
}

// New returns a Repo rooted at dir.
func New(dir string) *Repo {
	return &Repo{Dir: dir}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", jjkerr.Wrapf(jjkerr.ExternalFailure, err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether Dir is inside a git working tree.
func (r *Repo) IsRepo() bool {
	_, err := r.run(context.Background(), "rev-parse", "--git-dir")
	return err == nil
}

// Head returns the full SHA of HEAD, or an error if it cannot be resolved
// (e.g. an empty repository with no commits).
func (r *Repo) Head(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// Fsck runs a quick, read-only object-database consistency check.
func (r *Repo) Fsck(ctx context.Context) error {
	_, err := r.run(ctx, "fsck", "--no-progress", "--connectivity-only")
	return err
}

// ShortHead returns the abbreviated (length-char) SHA of HEAD, or
// UnknownCommit if it cannot be resolved.
func (r *Repo) ShortHead(ctx context.Context, length int) string {
	out, err := r.run(ctx, "rev-parse", fmt.Sprintf("--short=%d", length), "HEAD")
	if err != nil || out == "" {
		return UnknownCommit
	}
	return out
}

// UpdateRefCreate atomically creates ref pointing at sha, failing if ref
// already exists (old-value "" enforces create-if-absent). This is the
// primitive the VCS-ref lock is built on.
func (r *Repo) UpdateRefCreate(ctx context.Context, ref, sha string) error {
	_, err := r.run(ctx, "update-ref", ref, sha, "")
	return err
}

// DeleteRef removes ref.
func (r *Repo) DeleteRef(ctx context.Context, ref string) error {
	_, err := r.run(ctx, "update-ref", "-d", ref)
	return err
}

// ShowRef returns the SHA ref currently points to, or ok=false if it does
// not exist.
func (r *Repo) ShowRef(ctx context.Context, ref string) (sha string, ok bool) {
	out, err := r.run(ctx, "rev-parse", "--verify", "--quiet", ref)
	if err != nil || out == "" {
		return "", false
	}
	return out, true
}

// StagedFiles returns the paths currently staged for commit.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// HasStagedChanges reports whether anything is currently staged.
func (r *Repo) HasStagedChanges(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = r.Dir
	return cmd.Run() != nil
}

// DiffCachedSize returns the byte length of the staged diff for path,
// the incremental-cost measure the size guard uses for a modified blob.
func (r *Repo) DiffCachedSize(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--", path)
	cmd.Dir = r.Dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return 0, jjkerr.Wrapf(jjkerr.ExternalFailure, err, "git diff --cached -- %s", path)
	}
	return stdout.Len(), nil
}

// BlobSize returns the size in bytes of path's staged (index) blob, the
// incremental-cost measure for a new or binary blob.
func (r *Repo) BlobSize(ctx context.Context, path string) (int, error) {
	out, err := r.run(ctx, "cat-file", "-s", ":"+path)
	if err != nil {
		return 0, err
	}
	var size int
	if _, err := fmt.Sscanf(out, "%d", &size); err != nil {
		return 0, jjkerr.Wrapf(jjkerr.ExternalFailure, err, "parsing blob size %q for %s", out, path)
	}
	return size, nil
}

// IsBinary reports whether path's staged content is detected as binary.
func (r *Repo) IsBinary(ctx context.Context, path string) bool {
	out, err := r.run(ctx, "diff", "--cached", "--numstat", "--", path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(out, "-\t-\t")
}

// StagedDiff returns the full unified diff of everything currently staged.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached")
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", jjkerr.Wrapf(jjkerr.ExternalFailure, err, "git diff --cached: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// AddAll stages every change in the working tree (git add -A).
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", "-A")
	return err
}

// AddFiles stages exactly the given paths (git add --).
func (r *Repo) AddFiles(ctx context.Context, files []string) error {
	args := append([]string{"add", "--"}, files...)
	_, err := r.run(ctx, args...)
	return err
}

// Commit records a commit with message and returns the new HEAD SHA.
func (r *Repo) Commit(ctx context.Context, message string) (string, error) {
	if _, err := r.run(ctx, "commit", "-m", message); err != nil {
		return "", err
	}
	return r.Head(ctx)
}

// CommitAllowEmpty is Commit but permits recording a commit with no staged
// changes at all — used for marker commits (e.g. Arm's Bridle marker) whose
// only purpose is a Steeplechase log entry.
func (r *Repo) CommitAllowEmpty(ctx context.Context, message string) (string, error) {
	if _, err := r.run(ctx, "commit", "--allow-empty", "-m", message); err != nil {
		return "", err
	}
	return r.Head(ctx)
}

// LogEntry is one line of `git log`, as emitted for Steeplechase scanning.
type LogEntry struct {
	Timestamp string
	ShortSHA  string
	Subject   string
}

// LogAllMatching runs `git log --all --extended-regexp --grep=<pattern>`
// and returns parsed entries in the order git emits them (most recent
// first).
func (r *Repo) LogAllMatching(ctx context.Context, pattern string) ([]LogEntry, error) {
	out, err := r.run(ctx, "log", "--all", "--extended-regexp", "--grep="+pattern, "--format=%ai\t%h\t%s")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var entries []LogEntry
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		entries = append(entries, LogEntry{Timestamp: parts[0], ShortSHA: parts[1], Subject: parts[2]})
	}
	return entries, nil
}
