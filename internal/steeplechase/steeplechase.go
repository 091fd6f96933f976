// Package steeplechase recovers the narrative history of a Heat by
// regex-filtering VCS commit subjects and parsing them with the
// commit-message codec — the store itself carries only current tack
// state, not the story of how it got there.
package steeplechase

import (
	"context"
	"fmt"
	"regexp"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/notch"
)

// Entry is one parsed, transient Steeplechase record. Never persisted.
type Entry struct {
	Timestamp string // minute precision
	Commit    string // abbreviated SHA
	Hallmark  string // optional
	Firemark  string // optional; absent for pace-level entries
	Coronet   string // optional; absent for heat-level entries
	Action    byte   // 0 if absent
	Subject   string
}

const defaultLimit = 50

// Scan builds a regex matching any commit subject referencing fm (as a
// Firemark identity, or as a Coronet whose parent is fm), runs it across
// all branches, and parses matching entries. limit truncates the result
// (0 uses the default of 50).
func Scan(ctx context.Context, repo *gitwrap.Repo, fm favor.Firemark, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	pattern := buildPattern(fm)

	logEntries, err := repo.LogAllMatching(ctx, pattern)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(logEntries))
	for _, le := range logEntries {
		msg, perr := notch.Parse(le.Subject)
		if perr != nil {
			continue
		}
		if !notch.MatchesFiremark(msg, fm) {
			continue
		}
		entry := Entry{
			Timestamp: truncateToMinute(le.Timestamp),
			Commit:    le.ShortSHA,
			Hallmark:  msg.Hallmark,
			Action:    msg.Action,
			Subject:   msg.Subject,
		}
		if cr, cerr := favor.ParseCoronet(msg.Identity); cerr == nil {
			entry.Coronet = cr.Display()
		} else if other, ferr := favor.ParseFiremark(msg.Identity); ferr == nil {
			entry.Firemark = other.Display()
		}
		entries = append(entries, entry)
		if len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// buildPattern constructs the extended regex matching subjects that refer
// to fm, either directly as a Firemark identity or as a Coronet whose first
// two body characters equal fm's body: ^jjb:[^:]+:(₣XX|₢XX...).
func buildPattern(fm favor.Firemark) string {
	body := regexp.QuoteMeta(fm.Body())
	firemarkAlt := regexp.QuoteMeta(string(favor.FiremarkPrefix)) + body
	coronetAlt := regexp.QuoteMeta(string(favor.CoronetPrefix)) + body + `[A-Za-z0-9_-]{3}`
	return fmt.Sprintf(`^%s:[^:]+:(%s|%s)`, notch.Brand, firemarkAlt, coronetAlt)
}

func truncateToMinute(gitTimestamp string) string {
	// git %ai format: "YYYY-MM-DD HH:MM:SS +ZZZZ"; truncate to the first
	// 16 characters to get minute precision ("YYYY-MM-DD HH:MM").
	if len(gitTimestamp) > 16 {
		return gitTimestamp[:16]
	}
	return gitTimestamp
}
