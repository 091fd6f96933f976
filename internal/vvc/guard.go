// Package vvc implements the commit infrastructure shared by every
// mutation operation: the VCS-ref exclusive lock, the pre-commit size
// guard, and the interactive/machine commit surfaces built on top.
package vvc

import (
	"context"
	"fmt"
	"sort"

	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// GuardArgs parameterizes the size guard.
type GuardArgs struct {
	Limit uint64 // hard limit in bytes; over this, the commit is blocked
	Warn  uint64 // warn threshold in bytes; over this, a warning is emitted
}

// Default interactive guard limits (run_commit): 500 KB hard, 250 KB warn.
func InteractiveGuardArgs() GuardArgs {
	return GuardArgs{Limit: 500_000, Warn: 250_000}
}

// Default machine guard limits (machine_commit): 50 KB hard, 30 KB warn.
func MachineGuardArgs() GuardArgs {
	return GuardArgs{Limit: 50_000, Warn: 30_000}
}

type stagedFile struct {
	path string
	size int
}

// incrementalCost measures a staged file's contribution to guard's running
// total: for a binary blob it is the blob size (never a binary-diff
// representation, which can be pathologically large); for a text blob it is
// the unified-diff byte count, for a new text file as well (its whole content
// plus the diff headers); for a deletion it is zero.
func incrementalCost(ctx context.Context, repo *gitwrap.Repo, path string) (int, error) {
	size, err := repo.BlobSize(ctx, path)
	if err != nil {
		return 0, nil // deleted files have no index blob; treat as zero cost
	}
	if repo.IsBinary(ctx, path) {
		return size, nil
	}

	diffSize, err := repo.DiffCachedSize(ctx, path)
	if err != nil {
		return 0, err
	}
	if diffSize == 0 {
		// No unified-diff output for this path: charge the index blob size.
		return size, nil
	}
	return diffSize, nil
}

// Run checks guard args against the currently staged files. It returns a
// non-nil *jjkerr.Error with Kind InvalidArgument if the hard limit is
// exceeded (message includes a top-10 breakdown), and a warning string
// (non-empty, err nil) if only the warn threshold is exceeded.
func Run(ctx context.Context, repo *gitwrap.Repo, args GuardArgs) (warning string, err error) {
	paths, err := repo.StagedFiles(ctx)
	if err != nil {
		return "", jjkerr.Wrap(jjkerr.ExternalFailure, "guard: listing staged files", err)
	}

	files := make([]stagedFile, 0, len(paths))
	var total uint64
	for _, p := range paths {
		size, err := incrementalCost(ctx, repo, p)
		if err != nil {
			return "", jjkerr.Wrapf(jjkerr.ExternalFailure, err, "guard: measuring %s", p)
		}
		files = append(files, stagedFile{path: p, size: size})
		total += uint64(size)
	}

	if total > args.Limit {
		sort.Slice(files, func(i, j int) bool { return files[i].size > files[j].size })
		msg := fmt.Sprintf("guard: staged content %d bytes exceeds limit %d bytes\n\nBreakdown by file:\n%s",
			total, args.Limit, breakdown(files))
		return "", jjkerr.New(jjkerr.InvalidArgument, msg)
	}

	if total > args.Warn {
		return fmt.Sprintf("guard: staged content %d bytes exceeds warning threshold %d bytes", total, args.Warn), nil
	}

	return "", nil
}

func breakdown(sortedBySize []stagedFile) string {
	n := len(sortedBySize)
	if n > 10 {
		n = 10
	}
	out := ""
	for _, f := range sortedBySize[:n] {
		out += fmt.Sprintf("  %10d bytes  %s\n", f.size, f.path)
	}
	if len(sortedBySize) > 10 {
		out += fmt.Sprintf("  ... and %d more files\n", len(sortedBySize)-10)
	}
	return out
}
