package ops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
)

// newTestRepo initializes a real git repository in a temp directory with an
// initial empty Gallops store committed, mirroring the teacher's
// internal/git test fixtures (real git subprocesses, not a mock).
func newTestRepo(t *testing.T) *Env {
	t.Helper()
	root := t.TempDir()

	runGit(t, root, "init", "-q")
	runGit(t, root, "config", "user.email", "test@example.com")
	runGit(t, root, "config", "user.name", "Test")

	gallopsDir := filepath.Join(root, ".claude", "jjm")
	if err := os.MkdirAll(gallopsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	gallopsPath := filepath.Join(gallopsDir, "gallops.json")
	doc := &gallops.Gallops{NextHeatSeed: "AA", Heats: gallops.NewHeatMap()}
	if _, err := gallops.Save(doc, gallopsPath); err != nil {
		t.Fatalf("Save initial gallops: %v", err)
	}
	runGit(t, root, "add", "-A")
	runGit(t, root, "commit", "-q", "-m", "jjb:0000-0000000::n: initial")

	env, err := NewEnv(root)
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	env.GallopsPath = gallopsPath
	return env
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func root(env *Env) string {
	return env.Repo.Dir
}

func TestNominateThenSlate(t *testing.T) {
	ctx := context.Background()
	env := newTestRepo(t)

	nomResult, err := Nominate(ctx, env, NominateArgs{Root: root(env), Silks: "ship-it", Created: "260101"})
	if err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	if nomResult.CommitSHA == "" {
		t.Fatal("expected a commit sha")
	}

	validated, err := gallops.Load(env.GallopsPath)
	if err != nil {
		t.Fatalf("Load after nominate: %v", err)
	}
	doc := validated.Doc()
	if doc.Heats.Len() != 1 {
		t.Fatalf("expected 1 heat, got %d", doc.Heats.Len())
	}
	heatKey := doc.Heats.Keys()[0]
	fm, err := favor.ParseFiremark(heatKey)
	if err != nil {
		t.Fatalf("ParseFiremark: %v", err)
	}

	_, err = Slate(ctx, env, SlateArgs{Heat: fm, Silks: "write-the-thing", Text: "do the work"})
	if err != nil {
		t.Fatalf("Slate: %v", err)
	}

	validated, err = gallops.Load(env.GallopsPath)
	if err != nil {
		t.Fatalf("Load after slate: %v", err)
	}
	heat, ok := validated.Doc().Heats.Get(heatKey)
	if !ok {
		t.Fatal("heat missing after slate")
	}
	if len(heat.Order) != 1 {
		t.Fatalf("expected 1 pace, got %d", len(heat.Order))
	}
}

func TestFurloughReapplySameStatusPromotesToFront(t *testing.T) {
	ctx := context.Background()
	env := newTestRepo(t)

	if _, err := Nominate(ctx, env, NominateArgs{Root: root(env), Silks: "first-heat", Created: "260101"}); err != nil {
		t.Fatalf("Nominate first: %v", err)
	}
	if _, err := Nominate(ctx, env, NominateArgs{Root: root(env), Silks: "second-heat", Created: "260101"}); err != nil {
		t.Fatalf("Nominate second: %v", err)
	}

	validated, err := gallops.Load(env.GallopsPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	keys := validated.Doc().Heats.Keys()
	// Nominate inserts at front, so keys[0] is "second-heat", keys[1] "first-heat".
	firstHeatKey := keys[1]
	fm, err := favor.ParseFiremark(firstHeatKey)
	if err != nil {
		t.Fatalf("ParseFiremark: %v", err)
	}

	racing := gallops.StatusRacing
	if _, err := Furlough(ctx, env, FurloughArgs{Heat: fm, NewStatus: &racing}); err != nil {
		t.Fatalf("Furlough: %v", err)
	}

	validated, err = gallops.Load(env.GallopsPath)
	if err != nil {
		t.Fatalf("Load after furlough: %v", err)
	}
	newKeys := validated.Doc().Heats.Keys()
	if newKeys[0] != firstHeatKey {
		t.Errorf("expected %s promoted to front, got order %v", firstHeatKey, newKeys)
	}
}

func TestDraftMovesPaceAcrossHeats(t *testing.T) {
	ctx := context.Background()
	env := newTestRepo(t)

	if _, err := Nominate(ctx, env, NominateArgs{Root: root(env), Silks: "source-heat", Created: "260101"}); err != nil {
		t.Fatalf("Nominate source: %v", err)
	}
	if _, err := Nominate(ctx, env, NominateArgs{Root: root(env), Silks: "dest-heat", Created: "260101"}); err != nil {
		t.Fatalf("Nominate dest: %v", err)
	}

	validated, _ := gallops.Load(env.GallopsPath)
	keys := validated.Doc().Heats.Keys()
	destFm, _ := favor.ParseFiremark(keys[0])
	sourceFm, _ := favor.ParseFiremark(keys[1])

	if _, err := Slate(ctx, env, SlateArgs{Heat: sourceFm, Silks: "movable-work", Text: "move me"}); err != nil {
		t.Fatalf("Slate: %v", err)
	}

	validated, _ = gallops.Load(env.GallopsPath)
	sourceHeat, _ := validated.Doc().Heats.Get(sourceFm.Display())
	coronetKey := sourceHeat.Order[0]
	coronet, err := favor.ParseCoronet(coronetKey)
	if err != nil {
		t.Fatalf("ParseCoronet: %v", err)
	}

	if _, err := Draft(ctx, env, DraftArgs{SourceCoronet: coronet, DestHeat: destFm}); err != nil {
		t.Fatalf("Draft: %v", err)
	}

	validated, _ = gallops.Load(env.GallopsPath)
	sourceHeatAfter, _ := validated.Doc().Heats.Get(sourceFm.Display())
	destHeatAfter, _ := validated.Doc().Heats.Get(destFm.Display())
	if len(sourceHeatAfter.Order) != 0 {
		t.Errorf("expected source heat to have 0 paces, got %d", len(sourceHeatAfter.Order))
	}
	if len(destHeatAfter.Order) != 1 {
		t.Fatalf("expected dest heat to have 1 pace, got %d", len(destHeatAfter.Order))
	}
	movedPace := destHeatAfter.Paces[destHeatAfter.Order[0]]
	if len(movedPace.Tacks) != 2 {
		t.Fatalf("expected moved pace to carry 2 tacks (synthesized + original), got %d", len(movedPace.Tacks))
	}
}
