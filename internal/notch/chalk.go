package notch

// ChalkMarker is a lightweight annotation stamped onto a pace or a heat
// without going through a full Tally mutation — used by the chalk, wrap,
// landing, and scout CLI verbs to leave a breadcrumb in the Steeplechase
// log that isn't itself a state change.
type ChalkMarker struct {
	action Action
}

var (
	ChalkApproach   = ChalkMarker{ActionApproach}
	ChalkWrap       = ChalkMarker{ActionWrap}
	ChalkFly        = ChalkMarker{ActionFly}
	ChalkLanding    = ChalkMarker{ActionLanding}
	ChalkDiscussion = ChalkMarker{ActionDiscussion}

	chalkMarkers = map[byte]ChalkMarker{
		ActionApproach.Code:   ChalkApproach,
		ActionWrap.Code:       ChalkWrap,
		ActionFly.Code:        ChalkFly,
		ActionLanding.Code:    ChalkLanding,
		ActionDiscussion.Code: ChalkDiscussion,
	}
)

// Action returns the registry entry this marker stamps.
func (c ChalkMarker) Action() Action { return c.action }

// RequiresPace reports whether this marker must be anchored to a specific
// Coronet (pace-level) rather than a Firemark (heat-level).
func (c ChalkMarker) RequiresPace() bool {
	return c.action.Level == LevelPace
}

// LookupChalkMarker resolves a single-character action code to the Chalk
// marker it stamps, mirroring LookupAction for the marker-specific subset
// of the registry the chalk CLI verb accepts.
func LookupChalkMarker(code byte) (ChalkMarker, bool) {
	m, ok := chalkMarkers[code]
	return m, ok
}
