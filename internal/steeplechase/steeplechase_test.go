package steeplechase

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/notch"
)

func newTestRepo(t *testing.T) *gitwrap.Repo {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "init", "-q")
	run(t, dir, "config", "user.email", "test@example.com")
	run(t, dir, "config", "user.name", "Test")
	return gitwrap.New(dir)
}

func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func commitFile(t *testing.T, repo *gitwrap.Repo, name, message string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repo.Dir, name), []byte(message+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run(t, repo.Dir, "add", "-A")
	run(t, repo.Dir, "commit", "-q", "-m", message)
}

func TestScanFindsMatchingHeatAndPaceEntries(t *testing.T) {
	repo := newTestRepo(t)
	fm := favor.EncodeFiremark(7)
	cr := favor.EncodeCoronet(fm, 1)
	other := favor.EncodeFiremark(9)

	commitFile(t, repo, "a.txt", notch.Format(notch.HeatMessage("0001", fm, notch.ActionNominate, "nominate heat")))
	commitFile(t, repo, "b.txt", notch.Format(notch.PaceMessage("0001", cr, notch.ActionNotch, "tally pace")))
	commitFile(t, repo, "c.txt", notch.Format(notch.HeatMessage("0001", other, notch.ActionNominate, "unrelated heat")))

	entries, err := Scan(context.Background(), repo, fm, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Scan returned %d entries, want 2: %+v", len(entries), entries)
	}
	for _, e := range entries {
		if e.Firemark != fm.Display() && e.Coronet == "" {
			t.Errorf("entry %+v doesn't reference firemark %s", e, fm.Display())
		}
	}
}

func TestScanRespectsLimit(t *testing.T) {
	repo := newTestRepo(t)
	fm := favor.EncodeFiremark(3)

	for i := 0; i < 5; i++ {
		commitFile(t, repo, fmt.Sprintf("f%d.txt", i), notch.Format(notch.HeatMessage("0001", fm, notch.ActionTally, "update")))
	}

	entries, err := Scan(context.Background(), repo, fm, 2)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Scan with limit 2 returned %d entries", len(entries))
	}
}
