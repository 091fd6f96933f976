package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkconfig"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

const paddockTemplate = "# Paddock: %s\n\n## Context\n\n(Describe the initiative's background and goals)\n\n## References\n\n(List relevant files, docs, or prior work)\n"

func paddockPath(root string, fm favor.Firemark) string {
	return filepath.Join(root, ".claude", "jjm", fmt.Sprintf("jjp_%s.md", fm.Body()))
}

// NominateArgs is the input to Nominate.
type NominateArgs struct {
	Root    string // repository root; paddock paths are relative to it
	Silks   string
	Created string // YYMMDD; empty means "use jjkconfig.NowStamp()"
}

// Nominate creates a new Heat, allocating its Firemark from
// Gallops.NextHeatSeed, and writes its paddock template file.
func Nominate(ctx context.Context, env *Env, args NominateArgs) (Result, error) {
	if err := validateKebab("silks", args.Silks); err != nil {
		return Result{}, err
	}
	created := args.Created
	if created == "" {
		created = jjkconfig.NowStamp()
	}
	if err := validateDate("created", created); err != nil {
		return Result{}, err
	}

	var result Result
	err := vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		var doc *gallops.Gallops
		validated, err := gallops.Load(env.GallopsPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// No store yet: the first nomination starts an empty one.
			doc = &gallops.Gallops{NextHeatSeed: "AA", Heats: gallops.NewHeatMap()}
		case err != nil:
			return err
		default:
			doc = validated.Doc()
		}

		fmValue, err := favor.ParseFiremark(doc.NextHeatSeed)
		if err != nil {
			return jjkerr.Wrapf(jjkerr.InvariantViolation, err, "next_heat_seed %q", doc.NextHeatSeed)
		}
		newHeatKey := fmValue.Display()

		pPath := paddockPath(args.Root, fmValue)
		if err := os.MkdirAll(filepath.Dir(pPath), 0o755); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "creating paddock directory")
		}
		if err := os.WriteFile(pPath, []byte(fmt.Sprintf(paddockTemplate, args.Silks)), 0o644); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "writing paddock %s", pPath)
		}

		heat := gallops.Heat{
			Silks:        args.Silks,
			CreationTime: created,
			Status:       gallops.StatusRacing,
			Order:        []string{},
			NextPaceSeed: "AAA",
			PaddockFile:  relPath(args.Root, pPath),
			Paces:        map[string]gallops.Pace{},
		}
		doc.Heats.SetFront(newHeatKey, heat)
		doc.NextHeatSeed = favor.IncrementSeed(doc.NextHeatSeed)

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.HeatMessage(hallmark, fmValue, notch.ActionNominate, args.Silks))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath, pPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = Result{CommitSHA: sha, Summary: fmt.Sprintf("nominated %s as %s", newHeatKey, args.Silks)}
		return nil
	})
	return result, err
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
