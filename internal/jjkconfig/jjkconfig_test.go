package jjkconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsNoFilePresent(t *testing.T) {
	root := t.TempDir()
	got, err := LoadDefaults(root)
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if got != BuiltinDefaults() {
		t.Fatalf("LoadDefaults with no file = %+v, want builtin defaults %+v", got, BuiltinDefaults())
	}
}

func TestLoadDefaultsOverlaysFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".jjk"), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "gallops_path = \"custom/gallops.json\"\nmachine_size_limit = 1234\n"
	if err := os.WriteFile(filepath.Join(root, ".jjk", "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadDefaults(root)
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if got.GallopsPath != "custom/gallops.json" {
		t.Errorf("GallopsPath = %q, want custom/gallops.json", got.GallopsPath)
	}
	if got.MachineSizeLimit != 1234 {
		t.Errorf("MachineSizeLimit = %d, want 1234", got.MachineSizeLimit)
	}
	// Unset fields keep the builtin fallback.
	builtin := BuiltinDefaults()
	if got.Brand != builtin.Brand {
		t.Errorf("Brand = %q, want unset field to fall back to %q", got.Brand, builtin.Brand)
	}
	if got.InteractiveSizeLimit != builtin.InteractiveSizeLimit {
		t.Errorf("InteractiveSizeLimit = %d, want fallback %d", got.InteractiveSizeLimit, builtin.InteractiveSizeLimit)
	}
}

func TestReadBrandFileMissingIsNotError(t *testing.T) {
	root := t.TempDir()
	bf, ok, err := ReadBrandFile(root)
	if err != nil {
		t.Fatalf("ReadBrandFile: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a missing brand file, got %+v", bf)
	}
}

func TestReadBrandFileParsesHallmark(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".vvk"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"vvbh_hallmark":"0042"}`
	if err := os.WriteFile(filepath.Join(root, ".vvk", "vvbf_brand.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	bf, ok, err := ReadBrandFile(root)
	if err != nil {
		t.Fatalf("ReadBrandFile: %v", err)
	}
	if !ok || bf.Hallmark != "0042" {
		t.Fatalf("ReadBrandFile = (%+v, %v), want hallmark 0042", bf, ok)
	}
}
