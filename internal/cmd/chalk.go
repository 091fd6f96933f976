package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/ops"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// stampMarker commits a chalk marker: no store mutation, just a breadcrumb
// in the Steeplechase log. identityRaw is a Coronet for a pace-level marker
// or a Firemark for a heat-level one (only markers whose RequiresPace() is
// false, i.e. Discussion, accept a Firemark).
func stampMarker(marker notch.ChalkMarker, identityRaw, note string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	cr, crErr := favor.ParseCoronet(identityRaw)
	fm, fmErr := favor.ParseFiremark(identityRaw)
	if crErr != nil && fmErr != nil {
		return jjkerr.Newf(jjkerr.InvalidIdentifier, "chalk: %q is neither a valid coronet nor firemark", identityRaw)
	}
	if crErr != nil && marker.RequiresPace() {
		return jjkerr.Newf(jjkerr.InvalidArgument, "chalk: %s marker requires a Coronet (pace identity), not a Firemark", marker.Action().Name)
	}

	ctx := context.Background()
	return vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		hallmark := env.Hallmark.Resolve(ctx)
		subject := marker.Action().Name
		if note != "" {
			subject = fmt.Sprintf("%s: %s", marker.Action().Name, note)
		}

		var message string
		var display string
		if crErr == nil {
			message = notch.Format(notch.PaceMessage(hallmark, cr, marker.Action(), subject))
			display = cr.Display()
		} else {
			message = notch.Format(notch.HeatMessage(hallmark, fm, marker.Action(), subject))
			display = fm.Display()
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
		fmt.Printf("%s marked on %s (%s)\n", marker.Action().Name, display, sha)
		return nil
	})
}

var chalkMarkerCode string
var chalkNote string
var chalkCmd = &cobra.Command{
	Use:   "chalk <identity>",
	Short: "Stamp a marker (Approach/Wrap/Fly/Landing/Discussion) on a pace or heat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(chalkMarkerCode) != 1 {
			return jjkerr.New(jjkerr.InvalidArgument, "chalk: --marker must be exactly one character")
		}
		marker, ok := notch.LookupChalkMarker(chalkMarkerCode[0])
		if !ok {
			return jjkerr.Newf(jjkerr.InvalidArgument, "chalk: unknown marker code %q", chalkMarkerCode)
		}
		return stampMarker(marker, args[0], chalkNote)
	},
}

// runWrap is wrap's compound body: stage and commit the real work (via
// RunCommit's add-all/guard/generate-message/commit pipeline), tally the
// pace to complete, then stamp the Wrap marker — mirroring the original
// jjx_wrap's work-commit + state-transition + chalk-commit sequence.
func runWrap(cmd *cobra.Command, coronetRaw, note string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	cr, err := parseCoronetArg(coronetRaw)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := env.Repo.AddAll(ctx); err != nil {
		return err
	}
	if env.Repo.HasStagedChanges(ctx) {
		sha, err := vvc.RunCommit(ctx, env.Repo, vvc.InteractiveArgs{
			SkipAddAll:  true,
			Generator:   vvc.DefaultExternalCommandGenerator(),
			GuardLimits: env.InteractiveGuard,
		})
		if err != nil {
			if kind, ok := jjkerr.KindOf(err); ok && kind == jjkerr.InvalidArgument {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrap: error: %v\n", err)
				guardExceeded = true
				return nil
			}
			return err
		}
		fmt.Println(sha)
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "wrap: no staged changes, proceeding with state transition only")
	}

	complete := gallops.StateComplete
	if _, err := ops.Tally(ctx, env, ops.TallyArgs{Coronet: cr, State: &complete}); err != nil {
		return err
	}

	if note == "" {
		note = "pace complete"
	}
	return stampMarker(notch.ChalkWrap, coronetRaw, note)
}

var wrapNote string
var wrapCmd = &cobra.Command{
	Use:   "wrap <coronet>",
	Short: "Commit staged work, tally the pace to complete, and stamp a Wrap marker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrap(cmd, args[0], wrapNote)
	},
}

var landingNote string
var landingCmd = &cobra.Command{
	Use:   "landing <coronet>",
	Short: "Stamp a Landing marker on a pace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stampMarker(notch.ChalkLanding, args[0], landingNote)
	},
}

var scoutNote string
var scoutCmd = &cobra.Command{
	Use:   "scout <coronet>",
	Short: "Stamp a Fly marker on a pace (a quick fly-by note)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stampMarker(notch.ChalkFly, args[0], scoutNote)
	},
}

// guardExceeded records whether wrap's size guard fired, so Execute can map it
// to the spec's exit code 2 (distinct from the generic exit code 1 used for
// every other user error or I/O failure).
var guardExceeded bool

func init() {
	chalkCmd.Flags().StringVar(&chalkMarkerCode, "marker", "A", "marker code: A(pproach), W(rap), F(ly), L(anding), d(iscussion)")
	chalkCmd.Flags().StringVar(&chalkNote, "note", "", "optional note appended to the marker subject")
	wrapCmd.Flags().StringVar(&wrapNote, "note", "", "optional note appended to the marker subject")
	landingCmd.Flags().StringVar(&landingNote, "note", "", "optional note appended to the marker subject")
	scoutCmd.Flags().StringVar(&scoutNote, "note", "", "optional note appended to the marker subject")

	rootCmd.AddCommand(chalkCmd, wrapCmd, landingCmd, scoutCmd)
}
