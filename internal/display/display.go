// SPDX-License-Identifier: MIT
// Package display defines what the tuner shows and the sinks that show it:
// the terminal UI, the log, browsers on the WebSocket transport and UDP
// listeners all receive the same three events.
package display

import (
	"fmt"

	"gtuner/internal/tuning"
)

// NoLabel is shown in place of a note name or frequency that is not known.
const NoLabel = "—"

// Messages shown between readings.
const (
	MsgIdle          = "Press start and pluck one string cleanly."
	MsgPlay          = "Play one open string. Aim for 0¢."
	MsgNoMicrophone  = "No microphone access. Allow the input device and start again."
	MsgWeakSignal    = "Weak signal or noise. Play louder and cleaner."
	MsgUnstablePitch = "Could not detect a stable pitch. Try again."
)

// Direction tells which way to turn the peg.
type Direction int

const (
	InTune Direction = iota
	Flat
	Sharp
)

func (d Direction) String() string {
	switch d {
	case Flat:
		return "flat"
	case Sharp:
		return "sharp"
	default:
		return "in_tune"
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "in_tune":
		*d = InTune
	case "flat":
		*d = Flat
	case "sharp":
		*d = Sharp
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Advice is the human readable instruction for d.
func (d Direction) Advice() string {
	switch d {
	case Flat:
		return "Flat (tighten)"
	case Sharp:
		return "Sharp (loosen)"
	default:
		return "In tune!"
	}
}

// Reading is one full tuner result.
type Reading struct {
	Frequency float64                // Smoothed frequency in Hz.
	Detected  string                 // Note name of Frequency, or NoLabel below 100 Hz.
	Target    tuning.ReferenceString // Nearest standard string.
	Cents     float64                // Signed deviation from Target.
	Direction Direction
	Hint      string
	Needle    float64 // Needle angle in degrees, within ±MaxNeedleAngle.
}

// Needle scale: ±MaxNeedleCents maps onto ±MaxNeedleAngle.
const (
	MaxNeedleCents = 50.0
	MaxNeedleAngle = 45.0
)

// NeedleAngle clamps cents to the visible scale and converts it to degrees.
func NeedleAngle(cents float64) float64 {
	clamped := max(-MaxNeedleCents, min(MaxNeedleCents, cents))
	return clamped / MaxNeedleCents * MaxNeedleAngle
}

// Hint formats the advice line for a deviation.
func Hint(d Direction, cents float64) string {
	return fmt.Sprintf("%s · off by %.1f¢", d.Advice(), cents)
}

// Sink receives tuner events. Calls arrive from the analysis goroutine
// one at a time; implementations must not block it for long.
type Sink interface {
	// Reset returns the display to its neutral, idle state.
	Reset()
	// NoPitch clears the numeric fields and shows msg.
	NoPitch(msg string)
	// Result shows a reading.
	Result(r Reading)
}

// Multi fans events out to several sinks in order.
type Multi []Sink

func (m Multi) Reset() {
	for _, s := range m {
		s.Reset()
	}
}

func (m Multi) NoPitch(msg string) {
	for _, s := range m {
		s.NoPitch(msg)
	}
}

func (m Multi) Result(r Reading) {
	for _, s := range m {
		s.Result(r)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Reset()         {}
func (Discard) NoPitch(string) {}
func (Discard) Result(Reading) {}

// Compile-time checks for interface implementations.
var (
	_ Sink = Multi(nil)
	_ Sink = Discard{}
	_ Sink = (*Log)(nil)
	_ Sink = (*Broadcast)(nil)
)
