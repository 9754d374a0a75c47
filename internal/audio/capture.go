// SPDX-License-Identifier: MIT
/*
Package audio provides the capture sources the tuner reads from:

  - PortAudioAcquirer: the system microphone through PortAudio
  - WavAcquirer: a WAV file replayed window by window
  - SineAcquirer: a synthetic tone for trying the tuner without an input

Every source hands out fixed-size windows of mono samples in [-1, 1] at a
known sample rate. A Capture is owned by one tuner session at a time and
must be closed when the session stops.
*/
package audio

import "errors"

// ErrStreamClosed is returned by ReadWindow after Close.
var ErrStreamClosed = errors.New("audio: capture closed")

// Constraints is what the tuner asks of an input. Sources that cannot honor
// a processing switch capture raw audio, which is what the tuner wants.
type Constraints struct {
	Device     int     // Input device ID, -1 for the system default.
	SampleRate float64 // Preferred sample rate in Hz.
	WindowSize int     // Samples per window.
	LowLatency bool

	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// Capture is an acquired input.
type Capture interface {
	// SampleRate is the actual rate of the delivered samples.
	SampleRate() float64
	// ReadWindow fills dst with the most recent len(dst) samples.
	ReadWindow(dst []float64) error
	// Close releases the input. Further reads return ErrStreamClosed.
	Close() error
}

// Acquirer opens captures.
type Acquirer interface {
	Acquire(c Constraints) (Capture, error)
}

// Compile-time checks for interface implementations.
var (
	_ Acquirer = (*PortAudioAcquirer)(nil)
	_ Acquirer = (*WavAcquirer)(nil)
	_ Acquirer = (*SineAcquirer)(nil)
)
