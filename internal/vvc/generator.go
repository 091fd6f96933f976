package vvc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// ExternalCommandGenerator is the one concrete MessageGenerator shipped with
// this module: it shells out to a configurable external command, feeding it
// the staged diff on stdin and treating trimmed stdout as the summary. The
// assistant behind Command is an opaque collaborator — this type knows
// nothing about what it is beyond "a program that reads a diff and writes a
// one-line subject."
type ExternalCommandGenerator struct {
	// Command and Args invoke the summarizer, e.g. {"claude"}, {"--print"}.
	Command string
	Args    []string
}

// DefaultExternalCommandGenerator shells out to `claude --print`.
func DefaultExternalCommandGenerator() ExternalCommandGenerator {
	return ExternalCommandGenerator{Command: "claude", Args: []string{"--print"}}
}

func (g ExternalCommandGenerator) Generate(ctx context.Context, diff string) (string, error) {
	if g.Command == "" {
		return "", jjkerr.New(jjkerr.InvalidArgument, "external command generator: no command configured")
	}
	cmd := exec.CommandContext(ctx, g.Command, g.Args...)
	cmd.Stdin = strings.NewReader(diff)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", jjkerr.Wrapf(jjkerr.ExternalFailure, err, "running %s: %s", g.Command, errOut.String())
	}
	summary := strings.TrimSpace(out.String())
	if summary == "" {
		return "", jjkerr.New(jjkerr.ExternalFailure, "external command generator: empty summary")
	}
	return summary, nil
}
