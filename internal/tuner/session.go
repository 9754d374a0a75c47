// SPDX-License-Identifier: MIT
/*
Package tuner runs the analysis loop.

A Session owns one capture at a time. While Running it reads a window on
every scheduled tick, gates it on RMS, detects the pitch, smooths it with a
short median, matches it against the reference table and reports the
outcome to a display sink:

	Idle --Start--> Running --Stop--> Idle

Start fails with ErrCaptureUnavailable when the input cannot be opened;
the session then stays Idle until started again.
*/
package tuner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"gtuner/internal/analysis"
	"gtuner/internal/audio"
	"gtuner/internal/config"
	"gtuner/internal/display"
	applog "gtuner/internal/log"
	"gtuner/internal/tuning"

	"github.com/google/uuid"
)

// ErrCaptureUnavailable is returned by Start when the input cannot be
// acquired.
var ErrCaptureUnavailable = errors.New("tuner: capture unavailable")

// State is the session lifecycle state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Config holds everything a session needs besides its input and output.
type Config struct {
	Constraints     audio.Constraints
	Detector        analysis.DetectorConfig
	SmoothingWindow int
	InTuneCents     float64
	TickInterval    time.Duration

	// Optional. Nil means the standard table, a FrameScheduler at
	// TickInterval and an autocorrelation detector built from Detector.
	Table         []tuning.ReferenceString
	Scheduler     Scheduler
	PitchDetector analysis.PitchDetector
}

// DefaultConfig asks for raw 48 kHz input in 2048-sample windows.
func DefaultConfig() Config {
	return FromConfig(config.Default())
}

// FromConfig derives session settings from the application config.
func FromConfig(c *config.Config) Config {
	return Config{
		Constraints: audio.Constraints{
			Device:           c.Audio.InputDevice,
			SampleRate:       c.Audio.SampleRate,
			WindowSize:       c.Audio.WindowSize,
			LowLatency:       c.Audio.LowLatency,
			EchoCancellation: c.Audio.EchoCancellation,
			NoiseSuppression: c.Audio.NoiseSuppression,
			AutoGainControl:  c.Audio.AutoGainControl,
		},
		Detector: analysis.DetectorConfig{
			MinFreq:        c.Tuner.MinFrequency,
			MaxFreq:        c.Tuner.MaxFrequency,
			MinRMS:         c.Tuner.MinRMS,
			MinCorrelation: c.Tuner.MinCorrelation,
		},
		SmoothingWindow: c.Tuner.SmoothingWindow,
		InTuneCents:     c.Tuner.InTuneCents,
		TickInterval:    c.Tuner.TickInterval,
	}
}

// Session is one tuner. Start and Stop may be called from any goroutine;
// ticks run on the scheduler's goroutine.
type Session struct {
	cfg      Config
	acquirer audio.Acquirer
	sink     display.Sink
	sched    Scheduler

	lifecycle sync.Mutex // serializes Start and Stop

	mu         sync.Mutex // guards everything below
	state      State
	runID      string
	capture    audio.Capture
	sampleRate float64
	window     []float64
	handle     Handle
	stopWatch  func() bool
	gate       *analysis.Gate
	detector   analysis.PitchDetector
	smoother   *analysis.Smoother
	matcher    *tuning.Matcher
}

// NewSession creates an idle session reading from acquirer and reporting to
// sink.
func NewSession(cfg Config, acquirer audio.Acquirer, sink display.Sink) (*Session, error) {
	if acquirer == nil {
		return nil, fmt.Errorf("tuner: acquirer is required")
	}
	if sink == nil {
		sink = display.Discard{}
	}

	table := cfg.Table
	if table == nil {
		table = tuning.Standard()
	}
	matcher, err := tuning.NewMatcher(table)
	if err != nil {
		return nil, err
	}

	detector := cfg.PitchDetector
	if detector == nil {
		detector = analysis.NewDetector(cfg.Detector)
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = FrameScheduler{Interval: cfg.TickInterval}
	}

	return &Session{
		cfg:      cfg,
		acquirer: acquirer,
		sink:     sink,
		sched:    sched,
		gate:     analysis.NewGate(cfg.Detector.MinRMS),
		detector: detector,
		smoother: analysis.NewSmoother(cfg.SmoothingWindow),
		matcher:  matcher,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RunID identifies the current run. It is empty while idle.
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Running reports whether the session is Running.
func (s *Session) Running() bool {
	return s.State() == Running
}

// History returns the frequencies currently held by the smoother, oldest
// first.
func (s *Session) History() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smoother.History()
}

// Start acquires the input and schedules the analysis loop. Starting a
// running session does nothing. When ctx is cancelled the session stops.
func (s *Session) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.Running() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	capture, err := s.acquirer.Acquire(s.cfg.Constraints)
	if err != nil {
		applog.Warnf("Session: capture unavailable: %v", err)
		s.sink.NoPitch(display.MsgNoMicrophone)
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}

	s.mu.Lock()
	s.capture = capture
	s.sampleRate = capture.SampleRate()
	if len(s.window) != s.cfg.Constraints.WindowSize {
		s.window = make([]float64, s.cfg.Constraints.WindowSize)
	}
	s.state = Running
	s.runID = uuid.NewString()
	runID := s.runID
	s.mu.Unlock()

	applog.Infof("Session %s: running at %.0f Hz, window %d", runID, s.sampleRate, len(s.window))
	s.sink.NoPitch(display.MsgPlay)

	handle := s.sched.Repeat(s.tick)
	s.mu.Lock()
	s.handle = handle
	s.stopWatch = context.AfterFunc(ctx, func() {
		if err := s.Stop(); err != nil {
			applog.Errorf("Session: stop on cancel: %v", err)
		}
	})
	s.mu.Unlock()
	return nil
}

// Stop cancels the loop, waits for an in-flight tick, releases the input,
// resets the display and clears the frequency history. Stopping an idle
// session does nothing.
func (s *Session) Stop() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return nil
	}
	handle, stopWatch := s.handle, s.stopWatch
	s.handle, s.stopWatch = nil, nil
	s.mu.Unlock()

	// Outside s.mu: the tick we may be waiting for needs it.
	if stopWatch != nil {
		stopWatch()
	}
	if handle != nil {
		handle.Cancel()
	}

	s.mu.Lock()
	capture, runID := s.capture, s.runID
	s.capture, s.runID = nil, ""
	s.state = Idle
	s.smoother.Reset()
	s.mu.Unlock()

	var err error
	if capture != nil {
		if cerr := capture.Close(); cerr != nil {
			err = fmt.Errorf("failed to release capture: %w", cerr)
		}
	}

	s.sink.Reset()
	applog.Infof("Session %s: stopped", runID)
	return err
}

// tick runs one analysis step on the latest window.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state != Running || s.capture == nil {
		s.mu.Unlock()
		return
	}
	if err := s.capture.ReadWindow(s.window); err != nil {
		s.mu.Unlock()
		applog.Warnf("Session: read failed: %v", err)
		s.sink.NoPitch(display.MsgUnstablePitch)
		return
	}
	out := s.analyze(s.window, s.sampleRate)
	s.mu.Unlock()

	s.emit(out)
}

// Process runs one analysis step on window without a capture and reports
// the outcome to the display. It shares the smoother with the loop.
func (s *Session) Process(window []float64, sampleRate float64) Outcome {
	s.mu.Lock()
	out := s.analyze(window, sampleRate)
	s.mu.Unlock()

	s.emit(out)
	return out
}

// analyze must be called with s.mu held.
func (s *Session) analyze(window []float64, sampleRate float64) Outcome {
	open, rms := s.gate.Open(window)
	if !open {
		return Outcome{Kind: WeakSignal, RMS: rms}
	}

	freq, ok := s.detector.Detect(window, sampleRate)
	if !ok || freq < s.cfg.Detector.MinFreq || freq > s.cfg.Detector.MaxFreq {
		return Outcome{Kind: Unstable, RMS: rms, Raw: freq}
	}

	smoothed := s.smoother.Push(freq)
	return Outcome{
		Kind:    Pitched,
		RMS:     rms,
		Raw:     freq,
		Reading: NewReading(smoothed, s.matcher.Match(smoothed), s.cfg.InTuneCents),
	}
}

func (s *Session) emit(out Outcome) {
	if out.Kind == Pitched {
		s.sink.Result(out.Reading)
		return
	}
	s.sink.NoPitch(out.Message())
}

// Kind classifies the outcome of one analysis step.
type Kind int

const (
	Pitched    Kind = iota
	WeakSignal      // RMS below the noise floor; the detector was not run.
	Unstable        // No confident pitch, or one outside the band.
)

func (k Kind) String() string {
	switch k {
	case Pitched:
		return "pitched"
	case WeakSignal:
		return "weak signal"
	default:
		return "unstable"
	}
}

// Outcome is the result of one analysis step. Reading is set only when
// Kind is Pitched.
type Outcome struct {
	Kind    Kind
	Reading display.Reading
	Raw     float64 // Unsmoothed detector output, 0 when absent.
	RMS     float64
}

// Message is the text shown for a no-pitch outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case Pitched:
		return o.Reading.Hint
	case WeakSignal:
		return display.MsgWeakSignal
	default:
		return display.MsgUnstablePitch
	}
}

// detectedLabelMin is the lowest frequency, at two decimals, that gets a
// note name in the reading.
const detectedLabelMin = 100.0

// NewReading builds the reading for a smoothed frequency and its match.
func NewReading(freq float64, m tuning.MatchResult, inTuneCents float64) display.Reading {
	detected := display.NoLabel
	if math.Round(freq*100)/100 >= detectedLabelMin {
		detected = tuning.NoteName(freq)
	}
	dir := DirectionOf(m.Cents, inTuneCents)
	return display.Reading{
		Frequency: freq,
		Detected:  detected,
		Target:    m.String,
		Cents:     m.Cents,
		Direction: dir,
		Hint:      display.Hint(dir, m.Cents),
		Needle:    display.NeedleAngle(m.Cents),
	}
}

// DirectionOf is Flat below -tolerance cents, Sharp above +tolerance and
// InTune otherwise.
func DirectionOf(cents, tolerance float64) display.Direction {
	switch {
	case cents < -tolerance:
		return display.Flat
	case cents > tolerance:
		return display.Sharp
	default:
		return display.InTune
	}
}
