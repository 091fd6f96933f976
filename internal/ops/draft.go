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

// DraftArgs is the input to Draft.
type DraftArgs struct {
	SourceCoronet favor.Coronet
	DestHeat      favor.Firemark
	Positioning   Positioning
}

// Draft moves a single pace from its current heat to a different heat,
// synthesizing a new head Tack that records provenance.
func Draft(ctx context.Context, env *Env, args DraftArgs) (Result, error) {
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

		newCoronetKey, sourceHeatKey, destHeatKey, err := draftPace(doc, args.SourceCoronet, args.DestHeat, args.Positioning, env.basis(ctx), jjkconfig.NowTimestamp())
		if err != nil {
			return err
		}

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		sourceHeat, _ := doc.Heats.Get(sourceHeatKey)
		destHeat, _ := doc.Heats.Get(destHeatKey)
		hallmark := env.Hallmark.Resolve(ctx)
		subject := fmt.Sprintf("%s -> %s", args.SourceCoronet.Display(), destHeatKey)
		message := notch.Format(notch.HeatMessage(hallmark, args.DestHeat, notch.ActionDraft, subject))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath, sourceHeat.PaddockFile, destHeat.PaddockFile},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = Result{CommitSHA: sha, Summary: fmt.Sprintf("drafted %s into %s as %s", args.SourceCoronet.Display(), destHeatKey, newCoronetKey)}
		return nil
	})
	return result, err
}

// draftPace performs the in-memory move shared by Draft and Restring:
// remove the pace from its source heat, synthesize a provenance-recording
// head Tack, and insert it into the destination heat at the chosen
// position. Returns the new Coronet key plus the source and destination
// heat keys (for commit file-list construction).
func draftPace(doc *gallops.Gallops, source favor.Coronet, destFm favor.Firemark, pos Positioning, basis, ts string) (newCoronetKey, sourceHeatKey, destHeatKey string, err error) {
	sourceFm := source.ParentFiremark()
	sourceHeatKey = sourceFm.Display()
	destHeatKey = destFm.Display()

	if sourceFm.Body() == destFm.Body() {
		return "", "", "", jjkerr.New(jjkerr.StateConflict, "draft: source and destination heats must differ")
	}

	sourceHeat, err := requireHeat(doc, sourceFm)
	if err != nil {
		return "", "", "", err
	}
	if err := requireNotRetired(sourceHeat, sourceFm); err != nil {
		return "", "", "", err
	}
	destHeat, err := requireHeat(doc, destFm)
	if err != nil {
		return "", "", "", err
	}
	if err := requireNotRetired(destHeat, destFm); err != nil {
		return "", "", "", err
	}

	sourceCoronetKey := source.Display()
	pace, err := requirePace(sourceHeat, sourceCoronetKey)
	if err != nil {
		return "", "", "", err
	}
	if len(pace.Tacks) == 0 {
		return "", "", "", jjkerr.Newf(jjkerr.InvariantViolation, "pace %s has no tacks", sourceCoronetKey)
	}
	head := pace.Tacks[0]

	// Remove from source.
	sourceHeat.Order = removeValue(sourceHeat.Order, sourceCoronetKey)
	delete(sourceHeat.Paces, sourceCoronetKey)

	// Allocate under destination's seed.
	destPaceIdx, err := favor.DecodePaceSeed(destHeat.NextPaceSeed)
	if err != nil {
		return "", "", "", err
	}
	newCoronet := favor.EncodeCoronet(destFm, destPaceIdx)
	newCoronetKey = newCoronet.Display()

	draftText := fmt.Sprintf("Drafted from %s in %s.\n\n%s", sourceCoronetKey, sourceHeatKey, head.Text)
	draftTack := gallops.Tack{
		Ts:        ts,
		State:     head.State,
		Text:      draftText,
		Silks:     head.Silks,
		Basis:     basis,
		Direction: head.Direction,
	}
	newTacks := append([]gallops.Tack{draftTack}, pace.Tacks...)

	insertAt, err := pos.resolveIndex(destHeat.Order)
	if err != nil {
		return "", "", "", err
	}
	destHeat.Order = insertAtIndex(destHeat.Order, insertAt, newCoronetKey)
	if destHeat.Paces == nil {
		destHeat.Paces = map[string]gallops.Pace{}
	}
	destHeat.Paces[newCoronetKey] = gallops.Pace{Tacks: newTacks}
	destHeat.NextPaceSeed = favor.IncrementSeed(destHeat.NextPaceSeed)

	doc.Heats.Set(sourceHeatKey, sourceHeat)
	doc.Heats.Set(destHeatKey, destHeat)
	return newCoronetKey, sourceHeatKey, destHeatKey, nil
}

func removeValue(s []string, v string) []string {
	out := make([]string, 0, len(s))
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
