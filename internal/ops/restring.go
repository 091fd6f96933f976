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

// RestringArgs is the input to Restring.
type RestringArgs struct {
	SourceHeat favor.Firemark
	DestHeat   favor.Firemark
	Coronets   []string // ordered list of source Coronets to move, in order
}

// RestringMapping records one pace's old and new Coronet.
type RestringMapping struct {
	OldCoronet string
	NewCoronet string
}

// RestringResult is Restring's detailed outcome.
type RestringResult struct {
	Result
	Mappings       []RestringMapping
	SourceSizeBefore, SourceSizeAfter int
	DestSizeBefore, DestSizeAfter     int
}

// Restring moves a batch of paces from one heat to another, preserving
// input order, as a single atomic sequence of Draft-equivalent moves under
// one lock and one save.
func Restring(ctx context.Context, env *Env, args RestringArgs) (RestringResult, error) {
	if args.SourceHeat.Body() == args.DestHeat.Body() {
		return RestringResult{}, jjkerr.New(jjkerr.StateConflict, "restring: source and destination heats must differ")
	}
	if len(args.Coronets) == 0 {
		return RestringResult{}, jjkerr.New(jjkerr.InvalidArgument, "restring: coronets must be non-empty")
	}

	var result RestringResult
	err := vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		validated, err := gallops.Load(env.GallopsPath)
		if err != nil {
			return err
		}
		doc := validated.Doc()

		sourceHeat, err := requireHeat(doc, args.SourceHeat)
		if err != nil {
			return err
		}
		destHeatBefore, err := requireHeat(doc, args.DestHeat)
		if err != nil {
			return err
		}
		result.SourceSizeBefore = len(sourceHeat.Paces)
		result.DestSizeBefore = len(destHeatBefore.Paces)

		for _, c := range args.Coronets {
			cr, perr := favor.ParseCoronet(c)
			if perr != nil {
				return jjkerr.Wrapf(jjkerr.InvalidIdentifier, perr, "restring: coronet %q", c)
			}
			if cr.ParentFiremark().Body() != args.SourceHeat.Body() {
				return jjkerr.Newf(jjkerr.InvalidArgument, "restring: coronet %q does not belong to source heat %s", c, args.SourceHeat.Display())
			}
			if _, ok := sourceHeat.Paces[c]; !ok {
				return jjkerr.Newf(jjkerr.EntityNotFound, "restring: coronet %q not found in source heat", c)
			}
		}

		for _, c := range args.Coronets {
			cr, _ := favor.ParseCoronet(c)
			newKey, _, _, err := draftPace(doc, cr, args.DestHeat, Positioning{}, env.basis(ctx), jjkconfig.NowTimestamp())
			if err != nil {
				return err
			}
			result.Mappings = append(result.Mappings, RestringMapping{OldCoronet: c, NewCoronet: newKey})
		}

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		sourceHeatAfter, _ := doc.Heats.Get(args.SourceHeat.Display())
		destHeatAfter, _ := doc.Heats.Get(args.DestHeat.Display())
		result.SourceSizeAfter = len(sourceHeatAfter.Paces)
		result.DestSizeAfter = len(destHeatAfter.Paces)

		hallmark := env.Hallmark.Resolve(ctx)
		subject := fmt.Sprintf("restrung %d paces: %s -> %s", len(args.Coronets), args.SourceHeat.Display(), args.DestHeat.Display())
		message := notch.Format(notch.HeatMessage(hallmark, args.DestHeat, notch.ActionDraft, subject))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath, sourceHeatAfter.PaddockFile, destHeatAfter.PaddockFile},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result.Result = Result{CommitSHA: sha, Summary: subject}
		return nil
	})
	return result, err
}
