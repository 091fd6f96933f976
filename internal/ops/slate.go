package ops

import (
	"context"
	"fmt"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkconfig"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// SlateArgs is the input to Slate.
type SlateArgs struct {
	Heat        favor.Firemark
	Silks       string
	Text        string
	Positioning Positioning
}

// Slate creates a new Pace within an existing Heat, allocating its Coronet
// from the heat's next_pace_seed.
func Slate(ctx context.Context, env *Env, args SlateArgs) (Result, error) {
	if err := validateKebab("silks", args.Silks); err != nil {
		return Result{}, err
	}
	if args.Text == "" {
		return Result{}, jjkerr.New(jjkerr.InvalidArgument, "text must be non-empty")
	}
	if err := args.Positioning.validate(); err != nil {
		return Result{}, err
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

		paceIndexSeed, err := parsePaceSeed(heat.NextPaceSeed)
		if err != nil {
			return err
		}
		coronet := favor.EncodeCoronet(args.Heat, paceIndexSeed)
		coronetKey := coronet.Display()

		tack := gallops.Tack{
			Ts:    jjkconfig.NowTimestamp(),
			State: gallops.StateRough,
			Text:  args.Text,
			Silks: args.Silks,
			Basis: env.basis(ctx),
		}

		insertAt, err := args.Positioning.resolveIndex(heat.Order)
		if err != nil {
			return err
		}
		heat.Order = insertAtIndex(heat.Order, insertAt, coronetKey)
		if heat.Paces == nil {
			heat.Paces = map[string]gallops.Pace{}
		}
		heat.Paces[coronetKey] = gallops.Pace{Tacks: []gallops.Tack{tack}}
		heat.NextPaceSeed = favor.IncrementSeed(heat.NextPaceSeed)
		doc.Heats.Set(args.Heat.Display(), heat)

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.HeatMessage(hallmark, args.Heat, notch.ActionSlate, args.Silks))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = Result{CommitSHA: sha, Summary: fmt.Sprintf("slated %s in %s", coronetKey, args.Heat.Display())}
		return nil
	})
	return result, err
}

func parsePaceSeed(seed string) (uint32, error) {
	return favor.DecodePaceSeed(seed)
}

func insertAtIndex(order []string, idx int, value string) []string {
	if idx < 0 {
		idx = 0
	}
	if idx > len(order) {
		idx = len(order)
	}
	out := make([]string, 0, len(order)+1)
	out = append(out, order[:idx]...)
	out = append(out, value)
	out = append(out, order[idx:]...)
	return out
}
