package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/ops"
	"github.com/scaleinvariant/jjk/internal/steeplechase"
)

// firstRacingHeat returns the first racing heat's key, in display order, for
// saddle's no-argument form.
func firstRacingHeat(doc *gallops.Gallops) (string, bool) {
	for _, key := range doc.Heats.Keys() {
		heat, _ := doc.Heats.Get(key)
		if heat.Status == gallops.StatusRacing {
			return key, true
		}
	}
	return "", false
}

// nextActionablePace finds the first rough or bridled pace in a heat's
// display order, returning its coronet and current tack.
func nextActionablePace(heat gallops.Heat) (coronet string, tack gallops.Tack, ok bool) {
	for _, key := range heat.Order {
		pace, present := heat.Paces[key]
		if !present || len(pace.Tacks) == 0 {
			continue
		}
		t := pace.Tacks[0]
		if t.State == gallops.StateRough || t.State == gallops.StateBridled {
			return key, t, true
		}
	}
	return "", gallops.Tack{}, false
}

var saddleCmd = &cobra.Command{
	Use:   "saddle [heat]",
	Short: "Print the context needed to pick up work on a heat",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		validated, err := gallops.Load(env.GallopsPath)
		if err != nil {
			return err
		}
		doc := validated.Doc()

		racing := 0
		for _, key := range doc.Heats.Keys() {
			heat, _ := doc.Heats.Get(key)
			if heat.Status != gallops.StatusRacing {
				continue
			}
			if racing == 0 {
				fmt.Println("Racing heats:")
			}
			completed, defined := tallyCounts(heat)
			fmt.Printf("  %-6s  %-24s  %5d/%-5d\n", key, heat.Silks, completed, defined)
			racing++
		}
		if racing > 0 {
			fmt.Println()
		}

		var heatKey string
		if len(args) == 1 {
			heatKey = args[0]
		} else {
			key, ok := firstRacingHeat(doc)
			if !ok {
				return fmt.Errorf("saddle: no racing heats and no heat given")
			}
			heatKey = key
		}
		fm, err := parseFiremarkArg(heatKey)
		if err != nil {
			return err
		}
		heat, ok := doc.Heats.Get(fm.Display())
		if !ok {
			return fmt.Errorf("saddle: heat %s not found", fm.Display())
		}
		if heat.Status == gallops.StatusStabled {
			return fmt.Errorf("saddle: cannot saddle stabled heat %s", fm.Display())
		}

		paddock, _, err := ops.Curry(context.Background(), env, ops.CurryArgs{Root: rootRoot, Heat: fm})
		if err != nil {
			return err
		}

		fmt.Printf("Heat: %s (%s) [%s]\n", heat.Silks, fm.Display(), heat.Status)
		fmt.Printf("Paddock: %s\n\n", heat.PaddockFile)
		fmt.Println("Paddock content:")
		for _, line := range strings.Split(strings.TrimRight(paddock, "\n"), "\n") {
			fmt.Printf("  %s\n", line)
		}
		fmt.Println()

		if coronet, tack, ok := nextActionablePace(heat); ok {
			fmt.Printf("Next: %s (%s) [%s]\n\n", tack.Silks, coronet, tack.State)
			fmt.Println("Docket:")
			for _, line := range strings.Split(tack.Text, "\n") {
				fmt.Printf("  %s\n", line)
			}
			fmt.Println()
			if tack.Direction != nil && *tack.Direction != "" {
				fmt.Println("Warrant:")
				for _, line := range strings.Split(*tack.Direction, "\n") {
					fmt.Printf("  %s\n", line)
				}
				fmt.Println()
			}
		}

		entries, err := steeplechase.Scan(context.Background(), env.Repo, fm, 10)
		if err == nil {
			var filtered []steeplechase.Entry
			for _, e := range entries {
				switch e.Action {
				case notch.ActionNotch.Code, notch.ActionApproach.Code, notch.ActionDiscussion.Code:
					filtered = append(filtered, e)
				}
			}
			if len(filtered) > 0 {
				fmt.Println("Recent work:")
				for _, e := range filtered {
					identity := e.Coronet
					if identity == "" {
						identity = fm.Display()
					}
					fmt.Printf("  %s  %-8s  %s\n", e.Commit, identity, e.Subject)
				}
			}
		}

		for _, w := range invitatory(context.Background(), env) {
			fmt.Fprintf(os.Stderr, "saddle: warning: invitatory: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saddleCmd)
}
