// SPDX-License-Identifier: MIT
package display

// Event kinds.
const (
	EventReset   = "reset"
	EventNoPitch = "no_pitch"
	EventResult  = "result"
)

// Event is the wire form of a sink call, sent as JSON to browsers.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`

	Frequency       float64   `json:"frequency,omitempty"`
	Detected        string    `json:"detected,omitempty"`
	Target          string    `json:"target,omitempty"`
	TargetLabel     string    `json:"target_label,omitempty"`
	TargetFrequency float64   `json:"target_frequency,omitempty"`
	Cents           float64   `json:"cents"`
	Direction       Direction `json:"direction"`
	Needle          float64   `json:"needle"`
}

// ResetEvent is the neutral display.
func ResetEvent() Event {
	return Event{Type: EventReset, Message: MsgIdle}
}

// NoPitchEvent carries msg with the numeric fields cleared.
func NoPitchEvent(msg string) Event {
	return Event{Type: EventNoPitch, Message: msg}
}

// ResultEvent flattens r.
func ResultEvent(r Reading) Event {
	return Event{
		Type:            EventResult,
		Message:         r.Hint,
		Frequency:       r.Frequency,
		Detected:        r.Detected,
		Target:          r.Target.ID,
		TargetLabel:     r.Target.Label,
		TargetFrequency: r.Target.Frequency,
		Cents:           r.Cents,
		Direction:       r.Direction,
		Needle:          r.Needle,
	}
}
