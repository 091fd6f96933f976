package gallops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Validated wraps a Gallops document that has passed load's round-trip and
// semantic validation. The zero value is not usable; obtain one only via
// Load or via Save (which re-validates before returning).
type Validated struct {
	doc *Gallops
}

// Doc returns the wrapped document. Callers may mutate it freely; the
// mutated value must pass back through Save to be persisted (Save
// re-validates, so an invalid mutation is caught before it reaches disk).
func (v *Validated) Doc() *Gallops { return v.doc }

// MarshalPretty is the canonical on-disk formatter: 2-space indent, no
// HTML-escaping, trailing newline.
func MarshalPretty(doc *Gallops) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads path, deserializes it, re-serializes with the canonical
// formatter, and fails if the bytes differ byte-for-byte (guards against
// whitespace drift, key reordering, or alias expansion at rest). It then
// runs the semantic validator. Only Load and Save can produce a *Validated.
func Load(path string) (*Validated, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError(IoFailure, path, "reading", err)
	}

	var doc Gallops
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, newIOError(ParseFailure, path, "parsing", err)
	}

	canonical, err := MarshalPretty(&doc)
	if err != nil {
		return nil, newIOError(IoFailure, path, "re-serializing", err)
	}
	if !bytes.Equal(raw, canonical) {
		pos := firstDiffByte(raw, canonical)
		return nil, newIOError(RoundTripFailure, path,
			fmt.Sprintf("on-disk bytes do not match canonical formatting (first difference at byte offset %d)", pos), nil)
	}

	if msgs := Validate(&doc); len(msgs) > 0 {
		return nil, newIOError(SemanticFailure, path, "semantic validation failed:\n"+joinMessages(msgs), nil)
	}

	return &Validated{doc: &doc}, nil
}

// Save serializes doc, writes it to a temp file beside path, re-loads the
// temp file (which reruns validation end to end), and only on success
// renames it over path. On any failure the temp file is removed and an
// error returned; path is never touched in that case. The rename is atomic
// within a single filesystem.
func Save(doc *Gallops, path string) (*Validated, error) {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".tmp.%d.json", os.Getpid()))

	out, err := MarshalPretty(doc)
	if err != nil {
		return nil, newIOError(IoFailure, path, "serializing", err)
	}
	if err := os.WriteFile(tmpPath, out, 0o644); err != nil {
		return nil, newIOError(IoFailure, tmpPath, "writing", err)
	}

	validated, err := Load(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, newIOError(IoFailure, path, fmt.Sprintf("renaming %s", tmpPath), err)
	}

	return validated, nil
}

func firstDiffByte(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func joinMessages(msgs []string) string {
	var buf bytes.Buffer
	for _, m := range msgs {
		buf.WriteString("  - ")
		buf.WriteString(m)
		buf.WriteByte('\n')
	}
	return buf.String()
}
