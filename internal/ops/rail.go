package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// RailMovePositioning is the move-mode placement grammar: exactly one of
// before/after/first/last is required (unlike the common Positioning,
// "absent" is not a legal choice here).
type RailMovePositioning struct {
	Before string
	After  string
	First  bool
	Last   bool
}

func (p RailMovePositioning) validate() error {
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
	if p.Last {
		count++
	}
	if count != 1 {
		return jjkerr.New(jjkerr.InvalidArgument, "rail move mode requires exactly one of --before, --after, --first, --last")
	}
	return nil
}

// RailArgs is the input to Rail. Exactly one of NewOrder (order mode) or
// Move (move mode) must be set.
type RailArgs struct {
	Heat     favor.Firemark
	NewOrder []string            // order mode: full replacement order
	Move     *RailMoveArgs       // move mode
}

// RailMoveArgs is move-mode's input.
type RailMoveArgs struct {
	Coronet     string
	Positioning RailMovePositioning
}

// Rail reorders a Heat's paces, either by replacing the order wholesale
// (order mode) or by relocating a single pace (move mode).
func Rail(ctx context.Context, env *Env, args RailArgs) (Result, error) {
	if (args.NewOrder == nil) == (args.Move == nil) {
		return Result{}, jjkerr.New(jjkerr.InvalidArgument, "rail requires exactly one of order mode or move mode")
	}

	var result Result
	err := vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		validated, err := gallops.Load(env.GallopsPath)
		if err != nil {
			return err
		}
		doc := validated.Doc()

		heat, err := requireHeat(doc, args.Heat)
		if err != nil {
			return err
		}
		if err := requireNotRetired(heat, args.Heat); err != nil {
			return err
		}

		var subject string
		if args.NewOrder != nil {
			if err := railOrderMode(&heat, args.Heat, args.NewOrder); err != nil {
				return err
			}
			subject = "order: " + strings.Join(args.NewOrder, ", ")
		} else {
			movedSubject, err := railMoveMode(&heat, args.Move.Coronet, args.Move.Positioning)
			if err != nil {
				return err
			}
			subject = movedSubject
		}

		doc.Heats.Set(args.Heat.Display(), heat)
		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.HeatMessage(hallmark, args.Heat, notch.ActionRail, subject))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = Result{CommitSHA: sha, Summary: subject}
		return nil
	})
	return result, err
}

func railOrderMode(heat *gallops.Heat, fm favor.Firemark, newOrder []string) error {
	if len(newOrder) != len(heat.Order) {
		return jjkerr.Newf(jjkerr.InvalidArgument, "rail: new order has %d entries, heat has %d", len(newOrder), len(heat.Order))
	}
	seen := make(map[string]bool, len(newOrder))
	for _, c := range newOrder {
		if seen[c] {
			return jjkerr.Newf(jjkerr.InvalidArgument, "rail: duplicate coronet %q in new order", c)
		}
		seen[c] = true
		if _, ok := heat.Paces[c]; !ok {
			return jjkerr.Newf(jjkerr.EntityNotFound, "rail: coronet %q not present in heat", c)
		}
		cr, err := favor.ParseCoronet(c)
		if err != nil {
			return jjkerr.Wrapf(jjkerr.InvalidIdentifier, err, "rail: coronet %q", c)
		}
		if cr.ParentFiremark().Body() != fm.Body() {
			return jjkerr.Newf(jjkerr.InvalidArgument, "rail: coronet %q does not belong to heat %s", c, fm.Display())
		}
	}
	heat.Order = append([]string(nil), newOrder...)
	return nil
}

func railMoveMode(heat *gallops.Heat, coronetKey string, pos RailMovePositioning) (subject string, err error) {
	if err := pos.validate(); err != nil {
		return "", err
	}
	if _, ok := heat.Paces[coronetKey]; !ok {
		return "", jjkerr.Newf(jjkerr.EntityNotFound, "rail: coronet %q not present in heat", coronetKey)
	}

	currentPos := -1
	for i, c := range heat.Order {
		if c == coronetKey {
			currentPos = i
			break
		}
	}
	if currentPos < 0 {
		return "", jjkerr.Newf(jjkerr.InvariantViolation, "rail: coronet %q in paces but not in order", coronetKey)
	}

	withoutMoved := append(append([]string(nil), heat.Order[:currentPos]...), heat.Order[currentPos+1:]...)

	var targetIdx int
	switch {
	case pos.First:
		targetIdx = firstActionableIndexInOrder(withoutMoved, heat.Paces)
		subject = fmt.Sprintf("moved %s to first actionable position", coronetKey)
	case pos.Last:
		targetIdx = len(withoutMoved)
		subject = fmt.Sprintf("moved %s to end", coronetKey)
	case pos.Before != "":
		idx := indexOf(withoutMoved, pos.Before)
		if idx < 0 {
			return "", jjkerr.Newf(jjkerr.EntityNotFound, "rail: positioning target %q not found", pos.Before)
		}
		targetIdx = idx
		subject = fmt.Sprintf("moved %s before %s", coronetKey, pos.Before)
	case pos.After != "":
		idx := indexOf(withoutMoved, pos.After)
		if idx < 0 {
			return "", jjkerr.Newf(jjkerr.EntityNotFound, "rail: positioning target %q not found", pos.After)
		}
		targetIdx = idx + 1
		subject = fmt.Sprintf("moved %s after %s", coronetKey, pos.After)
	}

	heat.Order = insertAtIndex(withoutMoved, targetIdx, coronetKey)
	return subject, nil
}

// firstActionableIndexInOrder positions before the first actionable
// (rough or bridled) pace in order — not before index 0 — so completed or
// abandoned work stays at the top of the list. If none are actionable,
// appends to the end.
func firstActionableIndexInOrder(order []string, paces map[string]gallops.Pace) int {
	for i, c := range order {
		if pace, ok := paces[c]; ok && actionable(pace) {
			return i
		}
	}
	return len(order)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
