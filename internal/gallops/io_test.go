package gallops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsIoFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallops.json")
	_, err := Load(path)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Load on a missing file: got %v, want *IOError", err)
	}
	if ioErr.Kind != IoFailure {
		t.Fatalf("Kind = %q, want %q", ioErr.Kind, IoFailure)
	}
}

func TestLoadInvalidJSONIsParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallops.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Load on invalid JSON: got %v, want *IOError", err)
	}
	if ioErr.Kind != ParseFailure {
		t.Fatalf("Kind = %q, want %q", ioErr.Kind, ParseFailure)
	}
}

func TestLoadNonCanonicalBytesIsRoundTripFailure(t *testing.T) {
	doc := sampleGallops()
	out, err := MarshalPretty(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "gallops.json")
	// An extra blank line after the canonical trailing newline is a
	// whitespace difference MarshalPretty never emits, so it fails too.
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(path)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Load of canonical-plus-trailing-newline bytes: got %v, want *IOError", err)
	}
	if ioErr.Kind != RoundTripFailure {
		t.Fatalf("Kind = %q, want %q", ioErr.Kind, RoundTripFailure)
	}

	if err := os.WriteFile(path, append([]byte("  "), out...), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(path)
	ioErr = nil
	if !errors.As(err, &ioErr) {
		t.Fatalf("Load on non-canonical bytes: got %v, want *IOError", err)
	}
	if ioErr.Kind != RoundTripFailure {
		t.Fatalf("Kind = %q, want %q", ioErr.Kind, RoundTripFailure)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	doc := sampleGallops()
	path := filepath.Join(t.TempDir(), "gallops.json")
	if _, err := Save(doc, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	validated, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if validated.Doc().NextHeatSeed != doc.NextHeatSeed {
		t.Fatalf("round-tripped NextHeatSeed = %q, want %q", validated.Doc().NextHeatSeed, doc.NextHeatSeed)
	}
}
