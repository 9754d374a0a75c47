// SPDX-License-Identifier: MIT
package tuning

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the nearest equal-tempered note to freq (A4 = 440 Hz),
// with its octave, e.g. 110 -> "A2". It is a rough label for what was
// heard and need not be a string of the tuning.
func NoteName(freq float64) string {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return ""
	}
	n := int(math.Round(12 * math.Log2(freq/440)))
	midi := n + 69
	octave := floorDiv(midi, 12) - 1
	return fmt.Sprintf("%s%d", noteNames[((midi%12)+12)%12], octave)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
