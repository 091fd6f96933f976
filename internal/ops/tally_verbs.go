package ops

import (
	"context"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// Revise narrows Tally to a text-only change.
func Revise(ctx context.Context, env *Env, coronet favor.Coronet, text string) (Result, error) {
	return Tally(ctx, env, TallyArgs{Coronet: coronet, Text: &text})
}

// Relabel narrows Tally to a silks-only change.
func Relabel(ctx context.Context, env *Env, coronet favor.Coronet, silks string) (Result, error) {
	return Tally(ctx, env, TallyArgs{Coronet: coronet, Silks: &silks})
}

// Drop narrows Tally to an abandon transition.
func Drop(ctx context.Context, env *Env, coronet favor.Coronet) (Result, error) {
	state := gallops.StateAbandoned
	return Tally(ctx, env, TallyArgs{Coronet: coronet, State: &state})
}

// Arm narrows Tally to a state->bridled transition with a direction, and
// additionally emits a separate Bridle ('B') marker commit recording the
// transition in the Steeplechase as a pace-level event distinct from the
// heat-level Tally commit.
func Arm(ctx context.Context, env *Env, coronet favor.Coronet, direction string) (Result, error) {
	state := gallops.StateBridled
	result, err := Tally(ctx, env, TallyArgs{Coronet: coronet, State: &state, Direction: &direction})
	if err != nil {
		return Result{}, err
	}

	err = vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.ChalkMessage(hallmark, coronet, notch.ActionBridle, direction))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:       []string{env.GallopsPath},
			Message:     message,
			AllowEmpty:  true,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result.CommitSHA = sha
		return nil
	})
	return result, err
}
