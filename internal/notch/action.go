// Package notch implements the commit message grammar:
// {brand}:{hallmark}:{identity}:{action}: {subject}[\n\n{body}], the wire
// format for routine edits and for the Steeplechase history log.
package notch

import "fmt"

// Level distinguishes pace-scoped actions from heat-scoped ones.
type Level string

const (
	LevelPace Level = "pace"
	LevelHeat Level = "heat"
)

// Action is one entry of the action registry: a single character code,
// a name, and the level it applies at.
type Action struct {
	Code  byte
	Name  string
	Level Level
}

// The action registry. Exactly these codes; uniqueness is asserted in init.
var (
	ActionNotch      = Action{'n', "Notch", LevelPace}
	ActionApproach   = Action{'A', "Approach", LevelPace}
	ActionWrap       = Action{'W', "Wrap", LevelPace}
	ActionFly        = Action{'F', "Fly", LevelPace}
	ActionBridle     = Action{'B', "Bridle", LevelPace}
	ActionLanding    = Action{'L', "Landing", LevelPace}
	ActionDiscussion = Action{'d', "Discussion", LevelHeat}
	ActionNominate   = Action{'N', "Nominate", LevelHeat}
	ActionSlate      = Action{'S', "Slate", LevelHeat}
	ActionRail       = Action{'r', "Rail", LevelHeat}
	ActionTally      = Action{'T', "Tally", LevelHeat}
	ActionDraft      = Action{'D', "Draft", LevelHeat}
	ActionRetire     = Action{'R', "Retire", LevelHeat}
	ActionGarland    = Action{'G', "Garland", LevelHeat}
	ActionFurlough   = Action{'f', "Furlough", LevelHeat}

	registry = []Action{
		ActionNotch, ActionApproach, ActionWrap, ActionFly, ActionBridle, ActionLanding,
		ActionDiscussion, ActionNominate, ActionSlate, ActionRail, ActionTally,
		ActionDraft, ActionRetire, ActionGarland, ActionFurlough,
	}
	byCode map[byte]Action
)

func init() {
	byCode = make(map[byte]Action, len(registry))
	for _, a := range registry {
		if _, dup := byCode[a.Code]; dup {
			panic(fmt.Sprintf("notch: duplicate action code %q in registry", a.Code))
		}
		byCode[a.Code] = a
	}
}

// LookupAction resolves a single-character action code to its registry
// entry.
func LookupAction(code byte) (Action, bool) {
	a, ok := byCode[code]
	return a, ok
}
