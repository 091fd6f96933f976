package cmd

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func newTestRepoRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	if err := os.WriteFile(dir+"/seed.txt", []byte("seed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "jjb:0000-0000000::n: initial")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// runCLI executes rootCmd with args against root, capturing stdout. The CLI
// writes directly to os.Stdout in several verbs (matching the teacher's
// plain-fmt.Printf style), so stdout is redirected at the OS level rather
// than via cobra's SetOut.
func runCLI(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	origStdout := os.Stdout
	os.Stdout = w

	rootCmd.SetArgs(append([]string{"--root", root}, args...))
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = origStdout
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestNominateSlateMuster(t *testing.T) {
	root := newTestRepoRoot(t)

	out, err := runCLI(t, root, "nominate", "ship-the-thing")
	if err != nil {
		t.Fatalf("nominate: %v (%s)", err, out)
	}
	if !strings.Contains(out, "₣") {
		t.Fatalf("nominate output missing a firemark: %q", out)
	}

	fm := extractFiremark(t, out)

	out, err = runCLI(t, root, "slate", fm, "write-docs", "explain the thing")
	if err != nil {
		t.Fatalf("slate: %v (%s)", err, out)
	}

	out, err = runCLI(t, root, "muster")
	if err != nil {
		t.Fatalf("muster: %v (%s)", err, out)
	}
	if !strings.Contains(out, "ship-the-thing") {
		t.Fatalf("muster output missing heat silks: %q", out)
	}
}

func extractFiremark(t *testing.T, out string) string {
	t.Helper()
	idx := strings.Index(out, "₣")
	if idx < 0 {
		t.Fatalf("no firemark found in %q", out)
	}
	// A firemark is the prefix rune plus two base64 body characters.
	runes := []rune(out[idx:])
	if len(runes) < 3 {
		t.Fatalf("firemark too short in %q", out)
	}
	return string(runes[:3])
}
