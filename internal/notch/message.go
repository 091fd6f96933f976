package notch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// Message is the fully decomposed form of a commit subject line:
// {brand}:{hallmark}:{identity}:{action}: {subject}[\n\n{body}].
type Message struct {
	Brand    string
	Hallmark string
	Identity string // "", a Firemark display string, or a Coronet display string
	Action   byte
	Subject  string
	Body     string // empty if absent
}

// Format renders m as the wire-format commit message. Exactly four colons
// are always present, even when Identity is empty.
func Format(m Message) string {
	var b strings.Builder
	b.WriteString(m.Brand)
	b.WriteByte(':')
	b.WriteString(m.Hallmark)
	b.WriteByte(':')
	b.WriteString(m.Identity)
	b.WriteByte(':')
	b.WriteByte(m.Action)
	b.WriteString(": ")
	b.WriteString(m.Subject)
	if m.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(m.Body)
	}
	return b.String()
}

// Parse splits subject on ':' exactly four times (the final split has no
// limit, so the subject field may itself contain colons), tolerating the
// legacy no-hallmark form where identity follows brand immediately.
//
// Old format has 3 leading colon-delimited fields before the subject
// (brand:identity:action: subject); new format has 4
// (brand:hallmark:identity:action: subject). Both are accepted by counting
// colons before the first space-after-colon that yields a known action
// code.
func Parse(raw string) (Message, error) {
	body := ""
	head := raw
	if idx := strings.Index(raw, "\n\n"); idx >= 0 {
		head = raw[:idx]
		body = raw[idx+2:]
	}

	parts := strings.SplitN(head, ":", 4)
	if len(parts) == 4 {
		if m, ok := tryParseNewFormat(parts, body); ok {
			return m, nil
		}
	}

	oldParts := strings.SplitN(head, ":", 3)
	if len(oldParts) == 3 {
		if m, ok := tryParseOldFormat(oldParts, body); ok {
			return m, nil
		}
	}

	return Message{}, jjkerr.Newf(jjkerr.InvalidArgument, "notch: %q is not a recognized commit message format", raw)
}

// tryParseNewFormat expects parts = [brand, hallmark, identity, "action: subject"].
func tryParseNewFormat(parts []string, body string) (Message, bool) {
	brand, hallmark, identity := parts[0], parts[1], parts[2]
	action, subject, ok := splitActionSubject(parts[3])
	if !ok {
		return Message{}, false
	}
	return Message{Brand: brand, Hallmark: hallmark, Identity: identity, Action: action, Subject: subject, Body: body}, true
}

// tryParseOldFormat expects parts = [brand, identity, "action: subject"],
// the legacy form with no hallmark field.
func tryParseOldFormat(parts []string, body string) (Message, bool) {
	brand, identity := parts[0], parts[1]
	action, subject, ok := splitActionSubject(parts[2])
	if !ok {
		return Message{}, false
	}
	return Message{Brand: brand, Hallmark: "", Identity: identity, Action: action, Subject: subject, Body: body}, true
}

func splitActionSubject(s string) (action byte, subject string, ok bool) {
	if len(s) < 3 || s[1] != ':' || s[2] != ' ' {
		return 0, "", false
	}
	code := s[0]
	if _, known := LookupAction(code); !known {
		return 0, "", false
	}
	return code, s[3:], true
}

// MatchesFiremark reports whether m's Identity refers to the given
// Firemark: for a Coronet identity, its first 2 body characters must match;
// for a Firemark identity, the body itself must match; an empty identity
// never matches.
func MatchesFiremark(m Message, fm favor.Firemark) bool {
	if m.Identity == "" {
		return false
	}
	if cr, err := favor.ParseCoronet(m.Identity); err == nil {
		return cr.ParentFiremark().Body() == fm.Body()
	}
	if other, err := favor.ParseFiremark(m.Identity); err == nil {
		return other.Body() == fm.Body()
	}
	return false
}

// HallmarkReader resolves the install hallmark, reading
// ".vvk/vvbf_brand.json" if present.
type HallmarkReader struct {
	// ReadBrandFile returns the contents of .vvk/vvbf_brand.json, or
	// (nil, false) if it does not exist.
	ReadBrandFile func() ([]byte, bool)
	// Registry is the fallback in-repo hallmark registry (development
	// mode): a list of known numeric hallmarks.
	Registry []string
	Repo     *gitwrap.Repo
}

type brandFile struct {
	Hallmark string `json:"vvbh_hallmark"`
}

// Resolve returns the hallmark to stamp into a commit message: the
// installed hallmark if .vvk/vvbf_brand.json is present, otherwise the max
// numeric hallmark from the in-repo registry with the short HEAD SHA
// appended ("NNNN-<sha>"), or "0000-0000000" if git is unavailable.
func (h HallmarkReader) Resolve(ctx context.Context) string {
	if h.ReadBrandFile != nil {
		if raw, ok := h.ReadBrandFile(); ok {
			if hallmark, ok := parseBrandFile(raw); ok {
				return hallmark
			}
		}
	}

	maxHallmark := maxNumeric(h.Registry)
	sha := gitwrap.UnknownCommit
	if h.Repo != nil {
		sha = h.Repo.ShortHead(ctx, 7)
	}
	return fmt.Sprintf("%s-%s", maxHallmark, sha)
}

func parseBrandFile(raw []byte) (string, bool) {
	var bf brandFile
	if err := json.Unmarshal(raw, &bf); err != nil || bf.Hallmark == "" {
		return "", false
	}
	return bf.Hallmark, true
}

func maxNumeric(candidates []string) string {
	best := "0000"
	bestVal := -1
	for _, c := range candidates {
		var v int
		if _, err := fmt.Sscanf(c, "%d", &v); err == nil && v > bestVal {
			bestVal = v
			best = c
		}
	}
	return best
}
