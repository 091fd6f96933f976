package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/steeplechase"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

var paradeCmd = &cobra.Command{
	Use:   "parade",
	Short: "List every heat, in display order",
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
		for _, key := range doc.Heats.Keys() {
			heat, _ := doc.Heats.Get(key)
			fmt.Printf("%s  %-10s  %-8s  %d paces  %s\n", key, heat.Status, heat.CreationTime, len(heat.Order), heat.Silks)
		}
		return nil
	},
}

var reinLimit int
var reinCmd = &cobra.Command{
	Use:   "rein <heat>",
	Short: "Recover a heat's Steeplechase history from VCS commit subjects",
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
		entries, err := steeplechase.Scan(context.Background(), env.Repo, fm, reinLimit)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the semantic validator against the current store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		_, err = gallops.Load(env.GallopsPath)
		if err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

// identitySpec is get-spec's JSON payload: the identity codec rules, dumped
// for external tooling that wants to parse Firemarks/Coronets without
// linking this binary.
type identitySpec struct {
	Charset          string `json:"charset"`
	FiremarkPrefix   string `json:"firemark_prefix"`
	CoronetPrefix    string `json:"coronet_prefix"`
	FiremarkMax      uint16 `json:"firemark_max"`
	CoronetPaceMax   uint32 `json:"coronet_pace_max"`
	FiremarkLength   int    `json:"firemark_body_length"`
	CoronetLength    int    `json:"coronet_body_length"`
}

var getSpecCmd = &cobra.Command{
	Use:   "get-spec",
	Short: "Dump the embedded identity-codec rules as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := identitySpec{
			Charset:        favor.Charset,
			FiremarkPrefix: string(favor.FiremarkPrefix),
			CoronetPrefix:  string(favor.CoronetPrefix),
			FiremarkMax:    favor.FiremarkMax,
			CoronetPaceMax: favor.CoronetPaceMax,
			FiremarkLength: 2,
			CoronetLength:  5,
		}
		out, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var getCoronetsCmd = &cobra.Command{
	Use:   "get-coronets <heat>",
	Short: "List every Coronet belonging to a heat, in order",
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
		validated, err := gallops.Load(env.GallopsPath)
		if err != nil {
			return err
		}
		heat, ok := validated.Doc().Heats.Get(fm.Display())
		if !ok {
			return fmt.Errorf("heat %s not found", fm.Display())
		}
		for _, c := range heat.Order {
			fmt.Println(c)
		}
		return nil
	},
}

var notchActionCode string
var notchCmd = &cobra.Command{
	Use:   "notch <identity> <subject>",
	Short: "Commit a raw notch message under a chosen action code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if len(notchActionCode) != 1 {
			return fmt.Errorf("notch: --action must be exactly one character")
		}
		action, ok := notch.LookupAction(notchActionCode[0])
		if !ok {
			return fmt.Errorf("notch: unknown action code %q", notchActionCode)
		}
		cr, crErr := favor.ParseCoronet(args[0])
		fm, fmErr := favor.ParseFiremark(args[0])
		if crErr != nil && fmErr != nil {
			return fmt.Errorf("notch: %q is neither a valid firemark nor coronet", args[0])
		}
		ctx := context.Background()
		return vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
			hallmark := env.Hallmark.Resolve(ctx)
			var message string
			if crErr == nil {
				message = notch.Format(notch.PaceMessage(hallmark, cr, action, args[1]))
			} else {
				message = notch.Format(notch.HeatMessage(hallmark, fm, action, args[1]))
			}
			sha, err := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
				Files:       []string{env.GallopsPath},
				Message:     message,
				AllowEmpty:  true,
				GuardLimits: env.MachineGuard,
			})
			if err != nil {
				return err
			}
			fmt.Println(sha)
			return nil
		})
	},
}

func init() {
	reinCmd.Flags().IntVar(&reinLimit, "limit", 0, "maximum entries to return (0 uses the default)")
	notchCmd.Flags().StringVar(&notchActionCode, "action", "n", "single-character action registry code")

	rootCmd.AddCommand(paradeCmd, reinCmd, validateCmd, getSpecCmd, getCoronetsCmd, notchCmd)
}
