package ops

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkconfig"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

var garlandedSeqRE = regexp.MustCompile(`-(\d{2})$`)

// GarlandArgs is the input to Garland.
type GarlandArgs struct {
	Root string
	Heat favor.Firemark
}

// GarlandResult is Garland's detailed outcome.
type GarlandResult struct {
	Result
	GarlandedSilks    string
	ContinuationHeat  string
	ContinuationSilks string
}

// Garland marks a heat complete (renaming it "garlanded-<base>-<NN>",
// status stabled, retaining only finished paces) and opens a continuation
// heat carrying over every actionable pace.
func Garland(ctx context.Context, env *Env, args GarlandArgs) (GarlandResult, error) {
	var result GarlandResult
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

		actionableCoronets := make([]string, 0)
		completeCount := 0
		for _, c := range heat.Order {
			pace, ok := heat.Paces[c]
			if !ok {
				continue
			}
			if actionable(pace) {
				actionableCoronets = append(actionableCoronets, c)
			} else {
				completeCount++
			}
		}
		if len(actionableCoronets) == 0 {
			return jjkerr.Newf(jjkerr.StateConflict, "garland: heat %s has no actionable paces remaining", args.Heat.Display())
		}

		baseSilks, seq := parseGarlandedBase(heat.Silks)
		garlandedSilks := fmt.Sprintf("garlanded-%s-%02d", baseSilks, seq)
		continuationSilks := fmt.Sprintf("%s-%02d", baseSilks, seq+1)

		paddockRaw, rerr := os.ReadFile(fullPath(args.Root, heat.PaddockFile))
		paddockContent := ""
		if rerr == nil {
			paddockContent = string(paddockRaw)
		}
		marker := fmt.Sprintf("\n\n---\n\nGarlanded at pace %d — continuation opened as %s.\n", completeCount, continuationSilks)

		// Allocate continuation heat's Firemark before mutating doc.Heats,
		// the same way Nominate does.
		continuationFm, err := favor.ParseFiremark(doc.NextHeatSeed)
		if err != nil {
			return jjkerr.Wrapf(jjkerr.InvariantViolation, err, "next_heat_seed %q", doc.NextHeatSeed)
		}
		continuationKey := continuationFm.Display()
		doc.NextHeatSeed = favor.IncrementSeed(doc.NextHeatSeed)

		continuationPaddockPath := paddockPath(args.Root, continuationFm)
		if err := os.MkdirAll(dirOf(continuationPaddockPath), 0o755); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "creating paddock directory")
		}
		if err := os.WriteFile(continuationPaddockPath, []byte(paddockContent), 0o644); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "writing paddock %s", continuationPaddockPath)
		}

		continuationHeat := gallops.Heat{
			Silks:        continuationSilks,
			CreationTime: jjkconfig.NowStamp(),
			Status:       gallops.StatusRacing,
			Order:        []string{},
			NextPaceSeed: "AAA",
			PaddockFile:  relPath(args.Root, continuationPaddockPath),
			Paces:        map[string]gallops.Pace{},
		}
		doc.Heats.Set(continuationKey, continuationHeat)

		basis := env.basis(ctx)
		ts := jjkconfig.NowTimestamp()
		for _, c := range actionableCoronets {
			cr, perr := favor.ParseCoronet(c)
			if perr != nil {
				return jjkerr.Wrapf(jjkerr.InvariantViolation, perr, "garland: coronet %q", c)
			}
			if _, _, _, err := draftPace(doc, cr, continuationFm, Positioning{}, basis, ts); err != nil {
				return err
			}
		}

		garlandedHeat, _ := doc.Heats.Get(args.Heat.Display())
		garlandedHeat.Silks = garlandedSilks
		garlandedHeat.Status = gallops.StatusStabled
		doc.Heats.Set(args.Heat.Display(), garlandedHeat)

		if err := os.WriteFile(fullPath(args.Root, garlandedHeat.PaddockFile), []byte(paddockContent+marker), 0o644); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "annotating paddock %s", garlandedHeat.PaddockFile)
		}

		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		hallmark := env.Hallmark.Resolve(ctx)
		subject := fmt.Sprintf("%s -> %s", heat.Silks, continuationSilks)
		message := notch.Format(notch.HeatMessage(hallmark, args.Heat, notch.ActionGarland, subject))
		sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath, garlandedHeat.PaddockFile, continuationHeat.PaddockFile},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if err != nil {
			return err
		}
		result = GarlandResult{
			Result:            Result{CommitSHA: sha, Summary: subject},
			GarlandedSilks:    garlandedSilks,
			ContinuationHeat:  continuationKey,
			ContinuationSilks: continuationSilks,
		}
		return nil
	})
	return result, err
}

// parseGarlandedBase extracts the base silks and this garland's sequence
// number from an existing silks tail (e.g. "ship-it-02" -> ("ship-it",
// 2)), or starts at 1 if no sequence suffix is present. The continuation
// heat's silks use seq+1.
func parseGarlandedBase(silks string) (base string, seq int) {
	if m := garlandedSeqRE.FindStringSubmatch(silks); m != nil {
		n, _ := strconv.Atoi(m[1])
		return strings.TrimSuffix(silks, "-"+m[1]), n
	}
	return silks, 1
}

func fullPath(root, rel string) string {
	if rel == "" {
		return rel
	}
	if strings.HasPrefix(rel, "/") {
		return rel
	}
	return root + "/" + rel
}

func dirOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "."
	}
	return path[:idx]
}
