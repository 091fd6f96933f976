// Package cmd wires the nine mutation operations plus the read-only scan
// and introspection verbs into a cobra CLI. It is thin and mechanical by
// design: all domain logic lives in internal/ops, internal/steeplechase,
// and internal/gallops; this package only parses flags, builds an
// internal/ops.Env, and prints results.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scaleinvariant/jjk/internal/ops"
)

var rootRoot string

var rootCmd = &cobra.Command{
	Use:           "jjk",
	Short:         "Job Jockey Kit: an initiative-and-task tracker backed by a git repo",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootRoot, "root", ".", "repository root")
}

// Execute runs the CLI and returns the process exit code: 0 on success, 1 on
// user error or I/O failure, 2 when wrap's size-limit guard fires.
func Execute() int {
	c, err := rootCmd.ExecuteC()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: error: %v\n", c.Name(), err)
		return 1
	}
	if guardExceeded {
		return 2
	}
	return 0
}

func newEnv() (*ops.Env, error) {
	return ops.NewEnv(rootRoot)
}
