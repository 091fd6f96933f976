package gallops

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func direction(s string) *string { return &s }

func sampleGallops() *Gallops {
	g := &Gallops{NextHeatSeed: "AB"}
	g.Heats = NewHeatMap()
	g.Heats.Set("₣AA", Heat{
		Silks:        "ship-it",
		CreationTime: "260101",
		Status:       StatusRacing,
		Order:        []string{"₢AAAAA"},
		NextPaceSeed: "AAB",
		PaddockFile:  ".claude/jjm/jjp_AA.md",
		Paces: map[string]Pace{
			"₢AAAAA": {Tacks: []Tack{{
				Ts:    "260101-0900",
				State: StateRough,
				Text:  "write the thing",
				Silks: "write-the-thing",
				Basis: "0000000",
			}}},
		},
	})
	return g
}

func TestValidateCleanDocument(t *testing.T) {
	g := sampleGallops()
	if errs := Validate(g); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestValidateCatchesMultipleViolations(t *testing.T) {
	g := sampleGallops()
	heat, _ := g.Heats.Get("₣AA")
	heat.Silks = "Not Kebab!"
	pace := heat.Paces["₢AAAAA"]
	tack := pace.Tacks[0]
	tack.State = StateBridled // now requires direction
	pace.Tacks[0] = tack
	heat.Paces["₢AAAAA"] = pace
	g.Heats.Set("₣AA", heat)

	errs := Validate(g)
	if len(errs) < 2 {
		t.Fatalf("expected at least 2 violations (silks, direction), got %v", errs)
	}
}

func TestHeatMapOrderPreservedAcrossJSON(t *testing.T) {
	g := sampleGallops()
	g.Heats.Set("₣AB", Heat{
		Silks: "second", CreationTime: "260101", Status: StatusRacing,
		NextPaceSeed: "AAA", PaddockFile: "x", Paces: map[string]Pace{},
	})
	g.Heats.SetFront("₣AC", Heat{
		Silks: "third", CreationTime: "260101", Status: StatusRacing,
		NextPaceSeed: "AAA", PaddockFile: "x", Paces: map[string]Pace{},
	})

	out, err := MarshalPretty(g)
	if err != nil {
		t.Fatalf("MarshalPretty: %v", err)
	}

	var roundTripped Gallops
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"₣AC", "₣AA", "₣AB"}
	got := roundTripped.Heats.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallops.json")
	g := sampleGallops()

	if _, err := Save(g, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Doc().NextHeatSeed != "AB" {
		t.Errorf("NextHeatSeed = %q, want AB", v.Doc().NextHeatSeed)
	}
}

func TestLoadRejectsHandEditedNonCanonicalBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallops.json")
	if err := os.WriteFile(path, []byte(`{"next_heat_seed":"AB","heats":{}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected round-trip failure for non-canonically-formatted file")
	}
}
