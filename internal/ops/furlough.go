package ops

import (
	"context"
	"fmt"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// FurloughArgs is the input to Furlough. At least one of NewStatus or
// NewSilks must be set; NewStatus must be either racing or stabled.
type FurloughArgs struct {
	Heat      favor.Firemark
	NewStatus *gallops.Status
	NewSilks  *string
}

// Furlough changes a heat's status and/or silks. Applying a status the
// heat is already in is legal (a deliberate departure from naive "no-op
// errors on unchanged status" semantics) and has a reorder side effect:
// the heat is promoted to the front of the heats map so it surfaces at the
// top of UI listings.
func Furlough(ctx context.Context, env *Env, args FurloughArgs) (Result, error) {
	if args.NewStatus == nil && args.NewSilks == nil {
		return Result{}, jjkerr.New(jjkerr.InvalidArgument, "furlough: at least one of status or rename must be requested")
	}
	if args.NewStatus != nil && *args.NewStatus != gallops.StatusRacing && *args.NewStatus != gallops.StatusStabled {
		return Result{}, jjkerr.New(jjkerr.InvalidArgument, "furlough: status must be racing or stabled")
	}
	if args.NewSilks != nil {
		if err := validateKebab("silks", *args.NewSilks); err != nil {
			return Result{}, err
		}
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

		var description string
		if args.NewStatus != nil {
			heat.Status = *args.NewStatus
			description = fmt.Sprintf("status -> %s", *args.NewStatus)
		}
		if args.NewSilks != nil {
			heat.Silks = *args.NewSilks
			if description != "" {
				description += ", "
			}
			description += fmt.Sprintf("silks -> %s", *args.NewSilks)
		}

		heatKey := args.Heat.Display()
		doc.Heats.Set(heatKey, heat)
		doc.Heats.PromoteToFront(heatKey)

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.HeatMessage(hallmark, args.Heat, notch.ActionFurlough, description))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = Result{CommitSHA: sha, Summary: description}
		return nil
	})
	return result, err
}
