package gallops

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/scaleinvariant/jjk/internal/favor"
)

var (
	kebabRE     = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)
	dateRE      = regexp.MustCompile(`^\d{6}$`)
	tackTsRE    = regexp.MustCompile(`^\d{6}-\d{4}$`)
	shortShaRE  = regexp.MustCompile(`^[0-9a-f]{7}$`)
	firemarkKey = regexp.MustCompile(`^₣[A-Za-z0-9\-_]{2}$`)
)

// Validate runs every invariant check from the data model over doc,
// aggregating all violations (never short-circuiting) so a single call
// surfaces every schema problem. Each message is keyed to an entity path,
// e.g. "Heat 'X' Pace 'Y' Tack[i]: <message>".
func Validate(doc *Gallops) []string {
	var errs []string

	if !isBase64String(doc.NextHeatSeed) || len(doc.NextHeatSeed) != 2 {
		errs = append(errs, fmt.Sprintf("Gallops: next_heat_seed %q must be a 2-char base64 string", doc.NextHeatSeed))
	}

	for _, key := range doc.Heats.Keys() {
		heat, _ := doc.Heats.Get(key)
		errs = append(errs, validateHeat(key, heat)...)
	}

	return errs
}

func validateHeat(key string, heat Heat) []string {
	var errs []string
	label := fmt.Sprintf("Heat %q", key)

	if !firemarkKey.MatchString(key) {
		errs = append(errs, fmt.Sprintf("%s: key must be %s followed by 2 base64 characters", label, string(favor.FiremarkPrefix)))
	}
	var heatFiremarkBody string
	if fm, err := favor.ParseFiremark(key); err == nil {
		heatFiremarkBody = fm.Body()
	}

	if !kebabRE.MatchString(heat.Silks) {
		errs = append(errs, fmt.Sprintf("%s: silks %q must be alphanumeric-kebab", label, heat.Silks))
	}
	if !dateRE.MatchString(heat.CreationTime) {
		errs = append(errs, fmt.Sprintf("%s: creation_time %q must be YYMMDD", label, heat.CreationTime))
	}
	switch heat.Status {
	case StatusRacing, StatusStabled, StatusRetired:
	default:
		errs = append(errs, fmt.Sprintf("%s: status %q must be racing, stabled, or retired", label, heat.Status))
	}
	if !isBase64String(heat.NextPaceSeed) || len(heat.NextPaceSeed) != 3 {
		errs = append(errs, fmt.Sprintf("%s: next_pace_seed %q must be a 3-char base64 string", label, heat.NextPaceSeed))
	}

	orderSet := make(map[string]int, len(heat.Order))
	for _, c := range heat.Order {
		orderSet[c]++
	}
	for c, n := range orderSet {
		if n > 1 {
			errs = append(errs, fmt.Sprintf("%s: order contains duplicate coronet %q", label, c))
		}
	}

	paceKeys := make([]string, 0, len(heat.Paces))
	for c := range heat.Paces {
		paceKeys = append(paceKeys, c)
	}
	sort.Strings(paceKeys)
	paceKeySet := make(map[string]bool, len(paceKeys))
	for _, c := range paceKeys {
		paceKeySet[c] = true
	}

	if len(orderSet) != len(paceKeySet) || !sameSet(orderSet, paceKeySet) {
		errs = append(errs, fmt.Sprintf("%s: order %v must be the same set as paces keys %v", label, heat.Order, paceKeys))
	}

	for _, c := range paceKeys {
		pace := heat.Paces[c]
		errs = append(errs, validatePace(label, c, heatFiremarkBody, pace)...)
	}

	return errs
}

func sameSet(a map[string]int, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func validatePace(heatLabel, coronetKey, heatFiremarkBody string, pace Pace) []string {
	var errs []string
	label := fmt.Sprintf("%s Pace %q", heatLabel, coronetKey)

	if cr, err := favor.ParseCoronet(coronetKey); err != nil {
		errs = append(errs, fmt.Sprintf("%s: key is not a valid coronet: %v", label, err))
	} else if heatFiremarkBody != "" && cr.ParentFiremark().Body() != heatFiremarkBody {
		errs = append(errs, fmt.Sprintf("%s: coronet parent firemark does not match heat", label))
	}

	if len(pace.Tacks) == 0 {
		errs = append(errs, fmt.Sprintf("%s: must have at least one tack", label))
		return errs
	}

	for i, tack := range pace.Tacks {
		errs = append(errs, validateTack(label, i, tack)...)
	}
	return errs
}

func validateTack(paceLabel string, index int, tack Tack) []string {
	var errs []string
	label := fmt.Sprintf("%s Tack[%d]", paceLabel, index)

	if !tackTsRE.MatchString(tack.Ts) {
		errs = append(errs, fmt.Sprintf("%s: ts %q must be YYMMDD-HHMM", label, tack.Ts))
	}
	switch tack.State {
	case StateRough, StateBridled, StateComplete, StateAbandoned:
	default:
		errs = append(errs, fmt.Sprintf("%s: state %q is not a recognized tack state", label, tack.State))
	}
	if tack.Text == "" {
		errs = append(errs, fmt.Sprintf("%s: text must be non-empty", label))
	}
	if !kebabRE.MatchString(tack.Silks) {
		errs = append(errs, fmt.Sprintf("%s: silks %q must be alphanumeric-kebab", label, tack.Silks))
	}
	if !shortShaRE.MatchString(tack.Basis) {
		errs = append(errs, fmt.Sprintf("%s: basis %q must be 7 hex characters", label, tack.Basis))
	}

	if tack.State == StateBridled {
		if tack.Direction == nil || *tack.Direction == "" {
			errs = append(errs, fmt.Sprintf("%s: direction is required and must be non-empty when state is bridled", label))
		}
	} else if tack.Direction != nil {
		errs = append(errs, fmt.Sprintf("%s: direction must be absent when state is not bridled", label))
	}

	return errs
}

func isBase64String(s string) bool {
	return favor.IsBase64(s)
}
