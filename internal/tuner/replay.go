// SPDX-License-Identifier: MIT
package tuner

import (
	"context"
	"errors"
	"io"
	"time"

	"gtuner/internal/audio"
)

// Replay runs every window of a finite capture, such as a WAV file,
// through Process. Consecutive windows start hop samples apart, which
// gives the offset passed to fn. It returns nil once the capture reports
// io.EOF. The session must not be Running.
func (s *Session) Replay(ctx context.Context, c audio.Capture, hop int, fn func(at time.Duration, out Outcome)) error {
	if s.Running() {
		return errors.New("tuner: cannot replay while running")
	}
	if hop <= 0 {
		hop = s.cfg.Constraints.WindowSize
	}

	window := make([]float64, s.cfg.Constraints.WindowSize)
	sampleRate := c.SampleRate()
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.ReadWindow(window); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		out := s.Process(window, sampleRate)
		if fn != nil {
			at := time.Duration(float64(i*hop) / sampleRate * float64(time.Second))
			fn(at, out)
		}
	}
}
