package vvc

import (
	"context"
	"fmt"
	"os"

	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// MessageGenerator is the opaque external collaborator that turns a staged
// diff into a commit message summary. Swappable for testing; production
// wiring shells out to whatever external assistant is configured.
type MessageGenerator interface {
	Generate(ctx context.Context, diff string) (string, error)
}

// InteractiveArgs configures run_commit.
type InteractiveArgs struct {
	Prefix      string // optional, prepended to the resolved message
	Message     string // optional; if empty, Generator summarizes the staged diff
	Generator   MessageGenerator
	Trailer     string // optional trailer line appended to the final message, e.g. "Co-Authored-By: ..."
	SkipAddAll  bool
	GuardLimits GuardArgs
}

// RunCommit is the interactive commit surface: acquire lock -> stage
// (add-all unless suppressed) -> size guard -> resolve message (caller
// message, or ask Generator to summarize the staged diff) -> append
// trailer -> commit -> release lock. Returns the new commit SHA.
func RunCommit(ctx context.Context, repo *gitwrap.Repo, args InteractiveArgs) (sha string, err error) {
	err = WithLock(ctx, repo, func(lock *Lock) error {
		if !args.SkipAddAll {
			if err := repo.AddAll(ctx); err != nil {
				return jjkerr.Wrap(jjkerr.ExternalFailure, "staging changes", err)
			}
		}
		if !repo.HasStagedChanges(ctx) {
			return jjkerr.New(jjkerr.InvalidArgument, "run_commit: nothing staged")
		}

		limits := args.GuardLimits
		if limits == (GuardArgs{}) {
			limits = InteractiveGuardArgs()
		}
		if warning, err := Run(ctx, repo, limits); err != nil {
			return err
		} else if warning != "" {
			fmt.Fprintf(os.Stderr, "run_commit: warning: %s\n", warning) // guard proceeds
		}

		message := args.Message
		if message == "" {
			if args.Generator == nil {
				return jjkerr.New(jjkerr.InvalidArgument, "run_commit: no message provided and no generator configured")
			}
			diff, derr := stagedDiff(ctx, repo)
			if derr != nil {
				return derr
			}
			generated, gerr := args.Generator.Generate(ctx, diff)
			if gerr != nil {
				return jjkerr.Wrap(jjkerr.ExternalFailure, "generating commit message", gerr)
			}
			message = generated
		}
		if args.Prefix != "" {
			message = args.Prefix + message
		}
		if args.Trailer != "" {
			message = message + "\n\n" + args.Trailer
		}

		got, cerr := repo.Commit(ctx, message)
		if cerr != nil {
			return jjkerr.Wrap(jjkerr.ExternalFailure, "committing", cerr)
		}
		sha = got
		return nil
	})
	return sha, err
}

// MachineArgs configures machine_commit.
type MachineArgs struct {
	Files       []string
	Message     string
	GuardLimits GuardArgs // zero value uses MachineGuardArgs defaults
	AllowEmpty  bool       // permit a commit with no staged changes (marker commits)
}

// MachineCommit is the programmatic commit surface used by every mutation
// operation: stage exactly Files (no add-all), run the size guard with
// caller-supplied (or default) limits, commit Message verbatim (no
// generator, no trailer). Returns the new commit SHA. The caller supplies
// lock as compile-time proof it already holds the exclusive lock.
func MachineCommit(ctx context.Context, repo *gitwrap.Repo, lock *Lock, args MachineArgs) (string, error) {
	if lock == nil {
		return "", jjkerr.New(jjkerr.LockHeld, "machine_commit: caller must hold the commit lock")
	}
	if len(args.Files) == 0 {
		return "", jjkerr.New(jjkerr.InvalidArgument, "machine_commit: files must be non-empty")
	}
	if args.Message == "" {
		return "", jjkerr.New(jjkerr.InvalidArgument, "machine_commit: message must be non-empty")
	}

	if err := repo.AddFiles(ctx, args.Files); err != nil {
		return "", jjkerr.Wrap(jjkerr.ExternalFailure, "staging files", err)
	}

	limits := args.GuardLimits
	if limits == (GuardArgs{}) {
		limits = MachineGuardArgs()
	}
	if _, err := Run(ctx, repo, limits); err != nil {
		return "", err
	}

	var sha string
	var err error
	if args.AllowEmpty {
		sha, err = repo.CommitAllowEmpty(ctx, args.Message)
	} else {
		sha, err = repo.Commit(ctx, args.Message)
	}
	if err != nil {
		return "", jjkerr.Wrap(jjkerr.ExternalFailure, "committing", err)
	}
	return sha, nil
}

func stagedDiff(ctx context.Context, repo *gitwrap.Repo) (string, error) {
	return repo.StagedDiff(ctx)
}
