// jjk is the Job Jockey Kit CLI for tracking initiatives and tasks in a git repo.
package main

import (
	"os"

	"github.com/scaleinvariant/jjk/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
