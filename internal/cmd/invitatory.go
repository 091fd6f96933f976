package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/lock"
	"github.com/scaleinvariant/jjk/internal/ops"
)

// probe is one independent, non-mutating external check invitatory runs
// concurrently with its siblings. It never blocks a muster/saddle command's
// own exit code: a failing probe is logged as a warning only.
type probe struct {
	name string
	run  func(ctx context.Context, env *ops.Env) error
}

var invitatoryProbes = []probe{
	{name: "git-fsck", run: probeGitFsck},
	{name: "gallops-load", run: probeGallopsLoad},
}

// probeOutcome is one correlation-tagged probe result.
type probeOutcome struct {
	id   string
	name string
	err  error
}

// invitatory runs the probe set in parallel, each tagged with its own
// correlation ID, and appends one line per result to a shared aggregation
// log under the flock-guarded .jjk/muster.log. It returns the probes that
// failed, for the caller to print as warnings.
func invitatory(ctx context.Context, env *ops.Env) []string {
	results := make([]probeOutcome, len(invitatoryProbes))
	var wg sync.WaitGroup
	for i, p := range invitatoryProbes {
		wg.Add(1)
		go func(i int, p probe) {
			defer wg.Done()
			id := uuid.NewString()
			err := p.run(ctx, env)
			results[i] = probeOutcome{id: id, name: p.name, err: err}
		}(i, p)
	}
	wg.Wait()

	logPath := filepath.Join(env.Repo.Dir, ".jjk", "muster.log")
	if err := appendAggregationLog(logPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "invitatory: warning: could not write aggregation log: %v\n", err)
	}

	var warnings []string
	for _, r := range results {
		if r.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s[%s]: %v", r.name, r.id[:8], r.err))
		}
	}
	return warnings
}

func appendAggregationLog(path string, results []probeOutcome) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	release, err := lock.Acquire(path + ".lock")
	if err != nil {
		return err
	}
	defer release()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	stamp := time.Now().UTC().Format(time.RFC3339)
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = "fail: " + r.err.Error()
		}
		if _, err := fmt.Fprintf(f, "%s %s %s %s\n", stamp, r.id, r.name, status); err != nil {
			return err
		}
	}
	return nil
}

func probeGitFsck(ctx context.Context, env *ops.Env) error {
	return env.Repo.Fsck(ctx)
}

func probeGallopsLoad(ctx context.Context, env *ops.Env) error {
	_, err := gallops.Load(env.GallopsPath)
	return err
}
