package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scaleinvariant/jjk/internal/gallops"
)

// tallyCounts returns (completed, defined) pace counts for a heat: defined
// excludes abandoned paces, completed counts only the current tack's state.
func tallyCounts(heat gallops.Heat) (completed, defined int) {
	for _, pace := range heat.Paces {
		if len(pace.Tacks) == 0 {
			defined++
			continue
		}
		switch pace.Tacks[0].State {
		case gallops.StateAbandoned:
		case gallops.StateComplete:
			defined++
			completed++
		default:
			defined++
		}
	}
	return completed, defined
}

var musterStatus string
var musterCmd = &cobra.Command{
	Use:   "muster",
	Short: "List every heat with status and pace-completion counts",
	Args:  cobra.NoArgs,
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

		statusOrder := map[gallops.Status]int{
			gallops.StatusRacing:  0,
			gallops.StatusStabled: 1,
			gallops.StatusRetired: 2,
		}

		type row struct {
			key  string
			heat gallops.Heat
		}
		var rows []row
		for _, key := range doc.Heats.Keys() {
			heat, _ := doc.Heats.Get(key)
			if musterStatus != "" && string(heat.Status) != musterStatus {
				continue
			}
			rows = append(rows, row{key, heat})
		}
		for i := 1; i < len(rows); i++ {
			for j := i; j > 0 && statusOrder[rows[j].heat.Status] < statusOrder[rows[j-1].heat.Status]; j-- {
				rows[j], rows[j-1] = rows[j-1], rows[j]
			}
		}

		fmt.Printf("%-6s  %-24s  %-8s  %5s  %5s\n", "Fire", "Silks", "Status", "Done", "Total")
		for _, r := range rows {
			completed, defined := tallyCounts(r.heat)
			fmt.Printf("%-6s  %-24s  %-8s  %5d  %5d\n", r.key, r.heat.Silks, r.heat.Status, completed, defined)
		}

		for _, w := range invitatory(context.Background(), env) {
			fmt.Fprintf(os.Stderr, "muster: warning: invitatory: %s\n", w)
		}
		return nil
	},
}

func init() {
	musterCmd.Flags().StringVar(&musterStatus, "status", "", "filter by heat status (racing|stabled|retired)")
	rootCmd.AddCommand(musterCmd)
}
