package notch

import (
	"github.com/scaleinvariant/jjk/internal/favor"
)

// Brand is the short ASCII tag stamped on every commit this tool makes.
const Brand = "jjb"

// HeatMessage builds a heat-level commit message: identity is the Firemark
// display string.
func HeatMessage(hallmark string, heat favor.Firemark, action Action, subject string) Message {
	return Message{Brand: Brand, Hallmark: hallmark, Identity: heat.Display(), Action: action.Code, Subject: subject}
}

// HeatMessageWithBody is HeatMessage plus a body paragraph.
func HeatMessageWithBody(hallmark string, heat favor.Firemark, action Action, subject, body string) Message {
	m := HeatMessage(hallmark, heat, action, subject)
	m.Body = body
	return m
}

// PaceMessage builds a pace-level commit message: identity is the Coronet
// display string.
func PaceMessage(hallmark string, pace favor.Coronet, action Action, subject string) Message {
	return Message{Brand: Brand, Hallmark: hallmark, Identity: pace.Display(), Action: action.Code, Subject: subject}
}

// DiscussionMessage builds a Discussion ('d') commit message at heat level,
// used by Curry.
func DiscussionMessage(hallmark string, heat favor.Firemark, subject string) Message {
	return HeatMessage(hallmark, heat, ActionDiscussion, subject)
}

// ChalkMessage builds a pace-level marker commit (Approach/Wrap/Fly/Landing).
func ChalkMessage(hallmark string, pace favor.Coronet, marker Action, subject string) Message {
	return PaceMessage(hallmark, pace, marker, subject)
}
