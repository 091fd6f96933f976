package ops

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkconfig"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/steeplechase"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// RetireArgs is the input to Retire.
type RetireArgs struct {
	Root    string
	Heat    favor.Firemark
	Today   string // YYMMDD; empty means jjkconfig.NowStamp()
	Execute bool   // without this, build and print the trophy preview only
}

// RetireResult carries the assembled trophy content whether or not the
// operation actually executed.
type RetireResult struct {
	Result
	TrophyPath    string
	TrophyContent string
	Executed      bool
}

// Retire assembles a trophy markdown document (heat header, paddock
// content, full Tack history per pace, and the Steeplechase list), writes
// it under .claude/jjm/retired/, removes the heat from the store (without
// decrementing next_heat_seed), and deletes the paddock file. Without
// Execute set, it only builds and returns the preview; no changes are made.
func Retire(ctx context.Context, env *Env, args RetireArgs) (RetireResult, error) {
	today := args.Today
	if today == "" {
		today = jjkconfig.NowStamp()
	}
	if err := validateDate("today", today); err != nil {
		return RetireResult{}, err
	}

	validated, err := gallops.Load(env.GallopsPath)
	if err != nil {
		return RetireResult{}, err
	}
	doc := validated.Doc()

	heat, err := requireHeat(doc, args.Heat)
	if err != nil {
		return RetireResult{}, err
	}
	if err := requireNotRetired(heat, args.Heat); err != nil {
		return RetireResult{}, err
	}

	paddockRaw, _ := os.ReadFile(fullPath(args.Root, heat.PaddockFile))
	entries, err := steeplechase.Scan(ctx, env.Repo, args.Heat, 0)
	if err != nil {
		return RetireResult{}, err
	}

	trophyContent := buildTrophyContent(args.Heat, heat, string(paddockRaw), entries)
	trophyPath := fullPath(args.Root, fmt.Sprintf(".claude/jjm/retired/jjh_%s-r%s-%s.md", heat.CreationTime, today, heat.Silks))

	if !args.Execute {
		return RetireResult{TrophyPath: trophyPath, TrophyContent: trophyContent, Executed: false}, nil
	}

	var result RetireResult
	err = vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		if err := os.MkdirAll(dirOf(trophyPath), 0o755); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "creating retired directory")
		}
		if err := os.WriteFile(trophyPath, []byte(trophyContent), 0o644); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "writing trophy %s", trophyPath)
		}

		doc.Heats.Delete(args.Heat.Display())
		if _, err := gallops.Save(doc, env.GallopsPath); err != nil {
			return err
		}

		paddockFullPath := fullPath(args.Root, heat.PaddockFile)
		_ = os.Remove(paddockFullPath)

		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.HeatMessage(hallmark, args.Heat, notch.ActionRetire, heat.Silks))
		sha, cerr := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{env.GallopsPath, trophyPath, paddockFullPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if cerr != nil {
			return cerr
		}
		result = RetireResult{
			Result:        Result{CommitSHA: sha, Summary: fmt.Sprintf("retired %s", args.Heat.Display())},
			TrophyPath:    trophyPath,
			TrophyContent: trophyContent,
			Executed:      true,
		}
		return nil
	})
	return result, err
}

func buildTrophyContent(fm favor.Firemark, heat gallops.Heat, paddockContent string, entries []steeplechase.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Heat Trophy: %s\n\n", heat.Silks)
	fmt.Fprintf(&b, "Firemark: %s\n", fm.Display())
	fmt.Fprintf(&b, "Created: %s\n", heat.CreationTime)
	fmt.Fprintf(&b, "Retired: %s\n", jjkconfig.NowStamp())
	fmt.Fprintf(&b, "Status: %s\n\n", heat.Status)

	b.WriteString("## Paddock\n\n")
	b.WriteString(paddockContent)
	b.WriteString("\n\n## Paces\n\n")

	for _, c := range heat.Order {
		pace, ok := heat.Paces[c]
		if !ok || len(pace.Tacks) == 0 {
			continue
		}
		head := pace.Tacks[0]
		fmt.Fprintf(&b, "### %s (%s) [%s]\n\n", head.Silks, c, head.State)
		for _, tack := range pace.Tacks {
			fmt.Fprintf(&b, "**[%s] %s**\n\n%s\n\n", tack.Ts, tack.State, tack.Text)
			if tack.Direction != nil {
				fmt.Fprintf(&b, "*Direction:* %s\n\n", *tack.Direction)
			}
		}
	}

	b.WriteString("## Steeplechase\n\n")
	if len(entries) == 0 {
		b.WriteString("(no entries)\n")
	} else {
		for _, e := range entries {
			identity := "Heat"
			if e.Coronet != "" {
				identity = e.Coronet
			} else if e.Firemark != "" {
				identity = e.Firemark
			}
			actionName := "notch"
			if e.Action != 0 {
				if a, ok := notch.LookupAction(e.Action); ok {
					actionName = a.Name
				}
			}
			fmt.Fprintf(&b, "### %s - %s - %s\n\n%s\n\n", e.Timestamp, identity, actionName, e.Subject)
		}
	}

	return b.String()
}
