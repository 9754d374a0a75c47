// SPDX-License-Identifier: MIT
// Package tuning holds the standard six-string reference table and maps
// detected frequencies onto it.
package tuning

import (
	"fmt"
	"math"
)

// ReferenceString is one open string of a tuning.
type ReferenceString struct {
	ID        string  // Stable identifier, e.g. "E_low".
	Label     string  // Scientific pitch name, e.g. "E2".
	Frequency float64 // Hz.
}

// standard is E2 A2 D3 G3 B3 E4, low to high. Table order breaks ties in
// Match, so it must not be reordered.
var standard = [...]ReferenceString{
	{ID: "E_low", Label: "E2", Frequency: 82.4069},
	{ID: "A", Label: "A2", Frequency: 110.0000},
	{ID: "D", Label: "D3", Frequency: 146.8324},
	{ID: "G", Label: "G3", Frequency: 196.0000},
	{ID: "B", Label: "B3", Frequency: 246.9417},
	{ID: "E_high", Label: "E4", Frequency: 329.6276},
}

// Standard returns a copy of the standard tuning table.
func Standard() []ReferenceString {
	strings := make([]ReferenceString, len(standard))
	copy(strings, standard[:])
	return strings
}

// MatchResult is the nearest reference string and the signed deviation
// from it. Negative cents are flat, positive are sharp.
type MatchResult struct {
	String ReferenceString
	Cents  float64
}

// Index returns the position of the matched string in the standard table,
// or -1 if it is not a standard string.
func (m MatchResult) Index() int {
	for i, s := range standard {
		if s == m.String {
			return i
		}
	}
	return -1
}

// Matcher maps frequencies onto a fixed table of reference strings.
type Matcher struct {
	table []ReferenceString
}

// NewMatcher returns a Matcher over table. The table must not be empty.
func NewMatcher(table []ReferenceString) (*Matcher, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("tuning: reference table is empty")
	}
	t := make([]ReferenceString, len(table))
	copy(t, table)
	return &Matcher{table: t}, nil
}

// Match returns the reference string with the smallest linear distance in
// Hz from freq (first one wins on a tie) and the cents deviation of freq
// from it.
func (m *Matcher) Match(freq float64) MatchResult {
	best := m.table[0]
	minDiff := math.Abs(freq - best.Frequency)
	for _, s := range m.table[1:] {
		if d := math.Abs(freq - s.Frequency); d < minDiff {
			minDiff = d
			best = s
		}
	}
	return MatchResult{String: best, Cents: Cents(freq, best.Frequency)}
}

var standardMatcher = &Matcher{table: standard[:]}

// Match maps freq onto the standard tuning.
func Match(freq float64) MatchResult {
	return standardMatcher.Match(freq)
}

// Cents returns the interval from ref to freq in cents, 1200*log2(freq/ref).
func Cents(freq, ref float64) float64 {
	return 1200 * math.Log2(freq/ref)
}
