package jjkconfig

import (
	"os"
	"time"

	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// NowStamp returns "today" as a YYMMDD string. If BURD_NOW_STAMP is set, its
// leading 8 digits (YYYYMMDD) are truncated to the trailing 6 (YYMMDD);
// otherwise the local system clock is used.
func NowStamp() string {
	if raw, ok := os.LookupEnv("BURD_NOW_STAMP"); ok && len(raw) >= 8 {
		return raw[2:8]
	}
	return time.Now().Format("060102")
}

// NowTimestamp returns the full tack timestamp YYMMDD-HHMM for the current
// moment (or BURD_NOW_STAMP's date component combined with the current
// clock time, when set).
func NowTimestamp() string {
	if raw, ok := os.LookupEnv("BURD_NOW_STAMP"); ok && len(raw) >= 8 {
		return raw[2:8] + time.Now().Format("-1504")
	}
	return time.Now().Format("060102-1504")
}

// TabtargetContext holds the three wrapper-provided directories, when
// present.
type TabtargetContext struct {
	TempDir   string
	OutputDir string
	GitDir    string
}

// ReadTabtargetContext reads BURD_TEMP_DIR, BURD_OUTPUT_DIR, and
// BURD_GIT_CONTEXT. requireWrapper should be true only when the caller has
// independently detected it is running under the tabtarget launcher
// wrapper; in that case, a missing or nonexistent directory is a hard
// error. Outside that context, absent variables are simply left empty.
func ReadTabtargetContext(requireWrapper bool) (TabtargetContext, error) {
	var ctx TabtargetContext
	var err error
	ctx.TempDir, err = readExistingDir("BURD_TEMP_DIR", requireWrapper)
	if err != nil {
		return ctx, err
	}
	ctx.OutputDir, err = readExistingDir("BURD_OUTPUT_DIR", requireWrapper)
	if err != nil {
		return ctx, err
	}
	ctx.GitDir, err = readExistingDir("BURD_GIT_CONTEXT", requireWrapper)
	if err != nil {
		return ctx, err
	}
	return ctx, nil
}

func readExistingDir(envVar string, required bool) (string, error) {
	val, ok := os.LookupEnv(envVar)
	if !ok || val == "" {
		if required {
			return "", jjkerr.Newf(jjkerr.InvalidArgument, "%s is required when running under the tabtarget wrapper", envVar)
		}
		return "", nil
	}
	if _, err := os.Stat(val); err != nil {
		return "", jjkerr.Wrapf(jjkerr.InvalidArgument, err, "%s=%s does not exist", envVar, val)
	}
	return val, nil
}
