package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/ops"
)

func parseFiremarkArg(raw string) (favor.Firemark, error) {
	return favor.ParseFiremark(raw)
}

func parseCoronetArg(raw string) (favor.Coronet, error) {
	return favor.ParseCoronet(raw)
}

func printResult(r ops.Result) {
	fmt.Printf("%s (%s)\n", r.Summary, r.CommitSHA)
}

var (
	nominateCreated string
	nominateCmd     = &cobra.Command{
		Use:   "nominate <silks>",
		Short: "Create a new heat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			result, err := ops.Nominate(context.Background(), env, ops.NominateArgs{
				Root: rootRoot, Silks: args[0], Created: nominateCreated,
			})
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
)

var (
	slateBefore, slateAfter string
	slateFirst              bool
	slateCmd                = &cobra.Command{
		Use:   "slate <heat> <silks> <text>",
		Short: "Create a new pace within a heat",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			fm, err := parseFiremarkArg(args[0])
			if err != nil {
				return err
			}
			result, err := ops.Slate(context.Background(), env, ops.SlateArgs{
				Heat: fm, Silks: args[1], Text: args[2],
				Positioning: ops.Positioning{Before: slateBefore, After: slateAfter, First: slateFirst},
			})
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
)

var (
	railOrder                string
	railMoveCoronet          string
	railBefore, railAfter    string
	railFirst, railLast      bool
	railCmd                  = &cobra.Command{
		Use:   "rail <heat>",
		Short: "Reorder a heat's paces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			fm, err := parseFiremarkArg(args[0])
			if err != nil {
				return err
			}
			railArgs := ops.RailArgs{Heat: fm}
			if railMoveCoronet != "" {
				railArgs.Move = &ops.RailMoveArgs{
					Coronet: railMoveCoronet,
					Positioning: ops.RailMovePositioning{
						Before: railBefore, After: railAfter, First: railFirst, Last: railLast,
					},
				}
			} else {
				railArgs.NewOrder = splitCSV(railOrder)
			}
			result, err := ops.Rail(context.Background(), env, railArgs)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
)

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

var (
	tallyState, tallyText, tallySilks, tallyDirection string
	tallyCmd                                          = &cobra.Command{
		Use:   "tally <coronet>",
		Short: "Append a fresh tack to a pace, inheriting unset fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			cr, err := parseCoronetArg(args[0])
			if err != nil {
				return err
			}
			targs := ops.TallyArgs{Coronet: cr}
			if tallyState != "" {
				s := gallops.TackState(tallyState)
				targs.State = &s
			}
			if cmd.Flags().Changed("text") {
				targs.Text = &tallyText
			}
			if cmd.Flags().Changed("silks") {
				targs.Silks = &tallySilks
			}
			if cmd.Flags().Changed("direction") {
				targs.Direction = &tallyDirection
			}
			result, err := ops.Tally(context.Background(), env, targs)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	reviseCmd = &cobra.Command{
		Use:   "revise <coronet> <text>",
		Short: "Tally a text-only change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			cr, err := parseCoronetArg(args[0])
			if err != nil {
				return err
			}
			result, err := ops.Revise(context.Background(), env, cr, args[1])
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	relabelCmd = &cobra.Command{
		Use:   "relabel <coronet> <silks>",
		Short: "Tally a silks-only change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			cr, err := parseCoronetArg(args[0])
			if err != nil {
				return err
			}
			result, err := ops.Relabel(context.Background(), env, cr, args[1])
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	dropCmd = &cobra.Command{
		Use:   "drop <coronet>",
		Short: "Tally an abandon transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			cr, err := parseCoronetArg(args[0])
			if err != nil {
				return err
			}
			result, err := ops.Drop(context.Background(), env, cr)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	armDirection string
	armCmd       = &cobra.Command{
		Use:   "arm <coronet>",
		Short: "Tally a bridled transition with a direction, plus a Bridle marker commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			cr, err := parseCoronetArg(args[0])
			if err != nil {
				return err
			}
			result, err := ops.Arm(context.Background(), env, cr, armDirection)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
)

var (
	draftBefore, draftAfter string
	draftFirst              bool
	draftCmd                = &cobra.Command{
		Use:   "draft <source-coronet> <dest-heat>",
		Short: "Move a single pace to a different heat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			cr, err := parseCoronetArg(args[0])
			if err != nil {
				return err
			}
			destFm, err := parseFiremarkArg(args[1])
			if err != nil {
				return err
			}
			result, err := ops.Draft(context.Background(), env, ops.DraftArgs{
				SourceCoronet: cr, DestHeat: destFm,
				Positioning: ops.Positioning{Before: draftBefore, After: draftAfter, First: draftFirst},
			})
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
)

var (
	restringCoronets string
	restringCmd      = &cobra.Command{
		Use:   "restring <source-heat> <dest-heat>",
		Short: "Move a batch of paces to a different heat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			sourceFm, err := parseFiremarkArg(args[0])
			if err != nil {
				return err
			}
			destFm, err := parseFiremarkArg(args[1])
			if err != nil {
				return err
			}
			result, err := ops.Restring(context.Background(), env, ops.RestringArgs{
				SourceHeat: sourceFm, DestHeat: destFm, Coronets: splitCSV(restringCoronets),
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", result.Summary, result.CommitSHA)
			for _, m := range result.Mappings {
				fmt.Printf("  %s -> %s\n", m.OldCoronet, m.NewCoronet)
			}
			return nil
		},
	}
)

var garlandCmd = &cobra.Command{
	Use:   "garland <heat>",
	Short: "Mark a heat complete and open a continuation heat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		fm, err := parseFiremarkArg(args[0])
		if err != nil {
			return err
		}
		result, err := ops.Garland(context.Background(), env, ops.GarlandArgs{Root: rootRoot, Heat: fm})
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", result.Summary, result.CommitSHA)
		fmt.Printf("  garlanded: %s\n  continuation: %s (%s)\n", result.GarlandedSilks, result.ContinuationHeat, result.ContinuationSilks)
		return nil
	},
}

var (
	retireToday   string
	retireExecute bool
	retireCmd     = &cobra.Command{
		Use:   "retire <heat>",
		Short: "Build a trophy and remove a heat from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			fm, err := parseFiremarkArg(args[0])
			if err != nil {
				return err
			}
			result, err := ops.Retire(context.Background(), env, ops.RetireArgs{
				Root: rootRoot, Heat: fm, Today: retireToday, Execute: retireExecute,
			})
			if err != nil {
				return err
			}
			if !result.Executed {
				fmt.Print(result.TrophyContent)
				fmt.Fprintf(cmd.OutOrStdout(), "\n(preview only; pass --execute to retire for real)\n")
				return nil
			}
			fmt.Printf("retired into %s (%s)\n", result.TrophyPath, result.CommitSHA)
			return nil
		},
	}
)

var (
	furloughStatus string
	furloughSilks  string
	furloughCmd    = &cobra.Command{
		Use:   "furlough <heat>",
		Short: "Change a heat's status and/or silks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			fm, err := parseFiremarkArg(args[0])
			if err != nil {
				return err
			}
			fargs := ops.FurloughArgs{Heat: fm}
			if furloughStatus != "" {
				s := gallops.Status(furloughStatus)
				fargs.NewStatus = &s
			}
			if furloughSilks != "" {
				fargs.NewSilks = &furloughSilks
			}
			result, err := ops.Furlough(context.Background(), env, fargs)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
)

var (
	curryVerb string
	curryNote string
	curryCmd  = &cobra.Command{
		Use:   "curry <heat>",
		Short: "Read or (with piped stdin) overwrite a heat's paddock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			fm, err := parseFiremarkArg(args[0])
			if err != nil {
				return err
			}
			content, result, err := ops.Curry(context.Background(), env, ops.CurryArgs{
				Root: rootRoot, Heat: fm, Verb: ops.CurryVerb(curryVerb), Note: curryNote, Stdin: cmd.InOrStdin(),
			})
			if err != nil {
				return err
			}
			if content != "" {
				fmt.Print(content)
				return nil
			}
			printResult(result)
			return nil
		},
	}
)

func init() {
	nominateCmd.Flags().StringVar(&nominateCreated, "created", "", "YYMMDD; defaults to today")

	slateCmd.Flags().StringVar(&slateBefore, "before", "", "insert before this coronet")
	slateCmd.Flags().StringVar(&slateAfter, "after", "", "insert after this coronet")
	slateCmd.Flags().BoolVar(&slateFirst, "first", false, "insert at the front")

	railCmd.Flags().StringVar(&railOrder, "order", "", "comma-separated full replacement order")
	railCmd.Flags().StringVar(&railMoveCoronet, "move", "", "coronet to relocate (move mode)")
	railCmd.Flags().StringVar(&railBefore, "before", "", "move before this coronet")
	railCmd.Flags().StringVar(&railAfter, "after", "", "move after this coronet")
	railCmd.Flags().BoolVar(&railFirst, "first", false, "move to the first actionable position")
	railCmd.Flags().BoolVar(&railLast, "last", false, "move to the end")

	tallyCmd.Flags().StringVar(&tallyState, "state", "", "rough|bridled|complete|abandoned")
	tallyCmd.Flags().StringVar(&tallyText, "text", "", "new text")
	tallyCmd.Flags().StringVar(&tallySilks, "silks", "", "new silks")
	tallyCmd.Flags().StringVar(&tallyDirection, "direction", "", "new direction (bridled only)")
	armCmd.Flags().StringVar(&armDirection, "direction", "", "direction for the bridled transition")
	armCmd.MarkFlagRequired("direction")

	draftCmd.Flags().StringVar(&draftBefore, "before", "", "insert before this coronet in the dest heat")
	draftCmd.Flags().StringVar(&draftAfter, "after", "", "insert after this coronet in the dest heat")
	draftCmd.Flags().BoolVar(&draftFirst, "first", false, "insert at the front of the dest heat")

	restringCmd.Flags().StringVar(&restringCoronets, "coronets", "", "comma-separated ordered list of source coronets")
	restringCmd.MarkFlagRequired("coronets")

	retireCmd.Flags().StringVar(&retireToday, "today", "", "YYMMDD; defaults to today")
	retireCmd.Flags().BoolVar(&retireExecute, "execute", false, "actually retire, instead of previewing the trophy")

	furloughCmd.Flags().StringVar(&furloughStatus, "status", "", "racing|stabled")
	furloughCmd.Flags().StringVar(&furloughSilks, "rename", "", "new silks")

	curryCmd.Flags().StringVar(&curryVerb, "verb", "", "refine|level|muck (required when piping stdin)")
	curryCmd.Flags().StringVar(&curryNote, "note", "", "optional note appended to the commit subject")

	rootCmd.AddCommand(nominateCmd, slateCmd, railCmd, tallyCmd, reviseCmd, relabelCmd, dropCmd, armCmd,
		draftCmd, restringCmd, garlandCmd, retireCmd, furloughCmd, curryCmd)
}
