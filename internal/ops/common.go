// Package ops implements the nine compound mutation operations (nominate,
// slate, rail, tally, draft, restring, garland, retire, furlough) plus curry.
// Every operation follows the same shape: acquire the lock, load the
// validated store, mutate in memory, optionally rewrite markdown files,
// save atomically, machine-commit the touched files, release the lock.
package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/gitwrap"
	"github.com/scaleinvariant/jjk/internal/jjkconfig"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

var kebabRE = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)
var dateRE = regexp.MustCompile(`^\d{6}$`)

// Env bundles the ambient dependencies every operation needs: the git repo
// (for lock, commit, and basis-SHA resolution), the gallops file path, and
// the hallmark to stamp into commit messages.
type Env struct {
	Repo        *gitwrap.Repo
	GallopsPath string
	Hallmark    notch.HallmarkReader
	ShaDigits   int // length of short SHA used for Tack.basis; spec.md says 7

	// MachineGuard and InteractiveGuard are the commit size-guard
	// thresholds resolved from .jjk/config.toml (or the built-in
	// defaults when unset), threaded through to every vvc.MachineCommit/
	// vvc.RunCommit call site instead of the package-level constants.
	MachineGuard     vvc.GuardArgs
	InteractiveGuard vvc.GuardArgs
}

// NewEnv builds an Env from config defaults rooted at root.
func NewEnv(root string) (*Env, error) {
	defaults, err := jjkconfig.LoadDefaults(root)
	if err != nil {
		return nil, err
	}
	repo := gitwrap.New(root)
	return &Env{
		Repo:        repo,
		GallopsPath: filepath.Join(root, defaults.GallopsPath),
		ShaDigits:   7,
		Hallmark: notch.HallmarkReader{
			ReadBrandFile: func() ([]byte, bool) {
				bf, ok, err := jjkconfig.ReadBrandFile(root)
				if err != nil || !ok {
					return nil, false
				}
				return []byte(fmt.Sprintf(`{"vvbh_hallmark":%q}`, bf.Hallmark)), true
			},
			Repo: repo,
		},
		MachineGuard:     vvc.GuardArgs{Limit: defaults.MachineSizeLimit, Warn: defaults.MachineSizeWarn},
		InteractiveGuard: vvc.GuardArgs{Limit: defaults.InteractiveSizeLimit, Warn: defaults.InteractiveSizeWarn},
	}, nil
}

func (e *Env) basis(ctx context.Context) string {
	return e.Repo.ShortHead(ctx, e.ShaDigits)
}

func validateKebab(field, value string) error {
	if !kebabRE.MatchString(value) {
		return jjkerr.Newf(jjkerr.InvalidArgument, "%s %q must be alphanumeric-kebab", field, value)
	}
	return nil
}

func validateDate(field, value string) error {
	if !dateRE.MatchString(value) {
		return jjkerr.Newf(jjkerr.InvalidArgument, "%s %q must be YYMMDD", field, value)
	}
	return nil
}

// Positioning is the common mutually-exclusive placement grammar:
// {--before C | --after C | --first}, absent meaning "append to end".
type Positioning struct {
	Before string
	After  string
	First  bool
}

func (p Positioning) validate() error {
	count := 0
	if p.Before != "" {
		count++
	}
	if p.After != "" {
		count++
	}
	if p.First {
		count++
	}
	if count > 1 {
		return jjkerr.New(jjkerr.InvalidArgument, "positioning flags --before, --after, and --first are mutually exclusive")
	}
	return nil
}

// resolveIndex returns the insertion index into order for p, defaulting to
// append-to-end when no flag is set.
func (p Positioning) resolveIndex(order []string) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	switch {
	case p.Before != "":
		for i, c := range order {
			if c == p.Before {
				return i, nil
			}
		}
		return 0, jjkerr.Newf(jjkerr.EntityNotFound, "positioning target %q not found", p.Before)
	case p.After != "":
		for i, c := range order {
			if c == p.After {
				return i + 1, nil
			}
		}
		return 0, jjkerr.Newf(jjkerr.EntityNotFound, "positioning target %q not found", p.After)
	case p.First:
		return 0, nil
	default:
		return len(order), nil
	}
}

// requireHeat loads heat fm from doc or returns EntityNotFound.
func requireHeat(doc *gallops.Gallops, fm favor.Firemark) (gallops.Heat, error) {
	heat, ok := doc.Heats.Get(fm.Display())
	if !ok {
		return gallops.Heat{}, jjkerr.Newf(jjkerr.EntityNotFound, "heat %s not found", fm.Display())
	}
	return heat, nil
}

// requireNotRetired rejects mutation of a terminal heat.
func requireNotRetired(heat gallops.Heat, fm favor.Firemark) error {
	if heat.Status == gallops.StatusRetired {
		return jjkerr.Newf(jjkerr.StateConflict, "heat %s is retired and cannot be mutated", fm.Display())
	}
	return nil
}

// requirePace loads pace c from heat or returns EntityNotFound.
func requirePace(heat gallops.Heat, coronetKey string) (gallops.Pace, error) {
	pace, ok := heat.Paces[coronetKey]
	if !ok {
		return gallops.Pace{}, jjkerr.Newf(jjkerr.EntityNotFound, "pace %s not found", coronetKey)
	}
	return pace, nil
}

// actionable reports whether a pace's current (head) tack is in a state
// that still represents open work (rough or bridled).
func actionable(pace gallops.Pace) bool {
	if len(pace.Tacks) == 0 {
		return false
	}
	switch pace.Tacks[0].State {
	case gallops.StateRough, gallops.StateBridled:
		return true
	default:
		return false
	}
}

// Result is the common shape every operation returns: the new commit SHA
// and a human-readable summary.
type Result struct {
	CommitSHA string
	Summary   string
}
