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

// TallyArgs is the input to Tally: any subset of state/text/silks/direction
// may be set; unset fields inherit from the current (head) Tack.
type TallyArgs struct {
	Coronet   favor.Coronet
	State     *gallops.TackState
	Text      *string
	Silks     *string
	Direction *string
}

// Tally reads the current Tack, computes new field values by inheriting
// whatever the caller didn't supply, and prepends a fresh Tack.
func Tally(ctx context.Context, env *Env, args TallyArgs) (Result, error) {
	var result Result
	err := vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		validated, err := gallops.Load(env.GallopsPath)
		if err != nil {
			return err
		}
		doc := validated.Doc()

		heatFm := args.Coronet.ParentFiremark()
		heat, err := requireHeat(doc, heatFm)
		if err != nil {
			return err
		}
		if err := requireNotRetired(heat, heatFm); err != nil {
			return err
		}
		coronetKey := args.Coronet.Display()
		pace, err := requirePace(heat, coronetKey)
		if err != nil {
			return err
		}
		current := pace.Tacks[0]

		newState := current.State
		if args.State != nil {
			newState = *args.State
		}
		newText := current.Text
		if args.Text != nil {
			if *args.Text == "" {
				return jjkerr.New(jjkerr.InvalidArgument, "tally: text must be non-empty")
			}
			newText = *args.Text
		}
		newSilks := current.Silks
		if args.Silks != nil {
			if err := validateKebab("silks", *args.Silks); err != nil {
				return err
			}
			newSilks = *args.Silks
		}

		var newDirection *string
		switch {
		case newState == gallops.StateBridled && args.Direction != nil:
			if *args.Direction == "" {
				return jjkerr.New(jjkerr.InvalidArgument, "tally: direction must be non-empty when state is bridled")
			}
			newDirection = args.Direction
		case newState == gallops.StateBridled && args.Direction == nil:
			if current.State == gallops.StateBridled && current.Direction != nil {
				newDirection = current.Direction
			} else {
				return jjkerr.New(jjkerr.InvalidArgument, "tally: direction is required when state is bridled")
			}
		case newState != gallops.StateBridled:
			if args.Direction != nil {
				return jjkerr.New(jjkerr.InvalidArgument, "tally: direction is forbidden when state is not bridled")
			}
			newDirection = nil
		}

		newTack := gallops.Tack{
			Ts:        jjkconfig.NowTimestamp(),
			State:     newState,
			Text:      newText,
			Silks:     newSilks,
			Basis:     env.basis(ctx),
			Direction: newDirection,
		}
		pace.Tacks = append([]gallops.Tack{newTack}, pace.Tacks...)
		heat.Paces[coronetKey] = pace
		doc.Heats.Set(heatFm.Display(), heat)

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.HeatMessage(hallmark, heatFm, notch.ActionTally, fmt.Sprintf("%s: %s", coronetKey, newSilks)))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = Result{CommitSHA: sha, Summary: fmt.Sprintf("tallied %s -> %s", coronetKey, newState)}
		return nil
	})
	return result, err
}
