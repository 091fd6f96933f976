package ops

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/scaleinvariant/jjk/internal/favor"
	"github.com/scaleinvariant/jjk/internal/gallops"
	"github.com/scaleinvariant/jjk/internal/jjkerr"
	"github.com/scaleinvariant/jjk/internal/notch"
	"github.com/scaleinvariant/jjk/internal/vvc"
)

// CurryVerb is the note classification for a piped-stdin Curry write.
type CurryVerb string

const (
	CurryRefine CurryVerb = "refine"
	CurryLevel  CurryVerb = "level"
	CurryMuck   CurryVerb = "muck"
)

// CurryArgs is the input to Curry.
type CurryArgs struct {
	Root string
	Heat favor.Firemark
	Verb CurryVerb // required only when Stdin carries piped content
	Note string    // optional, appended to the commit subject
	Stdin io.Reader
}

// Curry is the single write path that touches only the paddock markdown
// file, never the store. With no piped stdin, it returns the current
// paddock content (getter). With piped stdin, it requires exactly one of
// the refine/level/muck verbs and overwrites the paddock file.
func Curry(ctx context.Context, env *Env, args CurryArgs) (string, Result, error) {
	validated, err := gallops.Load(env.GallopsPath)
	if err != nil {
		return "", Result{}, err
	}
	heat, err := requireHeat(validated.Doc(), args.Heat)
	if err != nil {
		return "", Result{}, err
	}
	paddockPath := fullPath(args.Root, heat.PaddockFile)

	if !StdinHasPipedContent(args.Stdin) {
		content, rerr := os.ReadFile(paddockPath)
		if rerr != nil {
			return "", Result{}, jjkerr.Wrapf(jjkerr.IoFailure, rerr, "reading paddock %s", paddockPath)
		}
		return string(content), Result{}, nil
	}

	switch args.Verb {
	case CurryRefine, CurryLevel, CurryMuck:
	default:
		return "", Result{}, jjkerr.New(jjkerr.InvalidArgument, "curry: piped stdin requires a verb: refine, level, or muck")
	}

	newContent, rerr := io.ReadAll(args.Stdin)
	if rerr != nil {
		return "", Result{}, jjkerr.Wrap(jjkerr.IoFailure, "reading stdin", rerr)
	}

	var result Result
	err = vvc.WithLock(ctx, env.Repo, func(lock *vvc.Lock) error {
		if err := os.WriteFile(paddockPath, newContent, 0o644); err != nil {
			return jjkerr.Wrapf(jjkerr.IoFailure, err, "writing paddock %s", paddockPath)
		}

		subject := "paddock curried"
		if args.Note != "" {
			subject = fmt.Sprintf("paddock curried: %s", args.Note)
		}
		hallmark := env.Hallmark.Resolve(ctx)
		message := notch.Format(notch.DiscussionMessage(hallmark, args.Heat, subject))
		sha, cerr := vvc.MachineCommit(ctx, env.Repo, lock, vvc.MachineArgs{
			Files:   []string{paddockPath},
			Message: message,
			GuardLimits: env.MachineGuard,
		})
		if cerr != nil {
			return cerr
		}
		result = Result{CommitSHA: sha, Summary: subject}
		return nil
	})
	return "", result, err
}

// StdinHasPipedContent reports whether r is a piped (non-terminal) input
// source. When r is *os.Stdin, this uses term.IsTerminal on its file
// descriptor; any other reader is treated as piped content.
func StdinHasPipedContent(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	return !term.IsTerminal(int(f.Fd()))
}
