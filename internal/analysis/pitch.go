// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DetectorConfig holds the detector's band and gates.
type DetectorConfig struct {
	MinFreq        float64 // Lowest frequency searched (sets the longest lag).
	MaxFreq        float64 // Highest frequency searched (sets the shortest lag).
	MinRMS         float64 // Windows quieter than this are rejected outright.
	MinCorrelation float64 // Best normalized correlation must reach this.
}

// DefaultDetectorConfig covers the guitar's usable range, generously bounded.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinFreq:        60,
		MaxFreq:        1000,
		MinRMS:         0.008,
		MinCorrelation: 0.01,
	}
}

// Outcome classifies a detection attempt.
type Outcome int

const (
	Found         Outcome = iota
	InvalidInput          // Empty window or non-positive sample rate.
	WeakSignal            // RMS below MinRMS.
	NoCorrelation         // No lag reached MinCorrelation.
	EdgeLag               // Peak on the edge of the lag range, refinement undefined.
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case InvalidInput:
		return "invalid input"
	case WeakSignal:
		return "weak signal"
	case NoCorrelation:
		return "no correlation"
	case EdgeLag:
		return "edge lag"
	default:
		return "unknown"
	}
}

// Estimate is the full result of one detection attempt. Frequency is only
// meaningful when Outcome is Found.
type Estimate struct {
	Outcome     Outcome
	Frequency   float64
	Lag         int     // Best integer lag.
	RefinedLag  float64 // Lag after parabolic interpolation.
	Correlation float64 // Normalized autocorrelation at Lag.
	RMS         float64
}

// Detector estimates pitch by normalized autocorrelation with parabolic
// refinement of the best lag. It keeps a private workspace so the DC
// offset can be removed without touching the caller's window; after the
// first call at a given window size Detect does not allocate. A Detector is
// not safe for concurrent use.
type Detector struct {
	cfg  DetectorConfig
	work []float64
}

// NewDetector returns a Detector with the given configuration.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Config returns the detector's configuration.
func (d *Detector) Config() DetectorConfig {
	return d.cfg
}

// Detect returns the estimated fundamental of window in Hz.
func (d *Detector) Detect(window []float64, sampleRate float64) (float64, bool) {
	e := d.Estimate(window, sampleRate)
	return e.Frequency, e.Outcome == Found
}

// LagRange returns the inclusive lag range searched for a window of n
// samples: [floor(sr/MaxFreq), floor(sr/MinFreq)], with the upper bound
// held below n so every correlation sum has at least one term.
func (d *Detector) LagRange(n int, sampleRate float64) (minLag, maxLag int) {
	minLag = max(int(sampleRate/d.cfg.MaxFreq), 1)
	maxLag = min(int(sampleRate/d.cfg.MinFreq), n-1)
	return minLag, maxLag
}

// Estimate runs the detector and reports how it decided.
func (d *Detector) Estimate(window []float64, sampleRate float64) Estimate {
	n := len(window)
	if n < 2 || !(sampleRate > 0) {
		return Estimate{Outcome: InvalidInput}
	}

	// Second call site of the noise gate; the analysis loop checks first so
	// it can tell a weak signal apart from an unstable one.
	rms := RMS(window)
	if rms < d.cfg.MinRMS {
		return Estimate{Outcome: WeakSignal, RMS: rms}
	}

	if cap(d.work) < n {
		d.work = make([]float64, n)
	}
	buf := d.work[:n]
	copy(buf, window)
	floats.AddConst(-stat.Mean(buf, nil), buf)

	minLag, maxLag := d.LagRange(n, sampleRate)
	bestLag, bestCorr := -1, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if c := autocorrelation(buf, lag); c > bestCorr {
			bestCorr = c
			bestLag = lag
		}
	}

	e := Estimate{Lag: bestLag, Correlation: bestCorr, RMS: rms}
	if bestLag < 0 || bestCorr < d.cfg.MinCorrelation {
		e.Outcome = NoCorrelation
		return e
	}

	corrAt := func(lag int) float64 {
		if lag < minLag || lag > maxLag {
			return math.Inf(-1)
		}
		return autocorrelation(buf, lag)
	}
	c0, c1, c2 := corrAt(bestLag-1), bestCorr, corrAt(bestLag+1)
	if math.IsInf(c0, -1) || math.IsInf(c2, -1) {
		e.Outcome = EdgeLag
		return e
	}

	refined := float64(bestLag)
	if denom := c0 - 2*c1 + c2; denom != 0 {
		refined += 0.5 * (c0 - c2) / denom
	}

	e.RefinedLag = refined
	e.Frequency = sampleRate / refined
	e.Outcome = Found
	return e
}

// autocorrelation returns sum(buf[i]*buf[i+lag]) / (len(buf)-lag).
func autocorrelation(buf []float64, lag int) float64 {
	n := len(buf) - lag
	return floats.Dot(buf[:n], buf[lag:]) / float64(n)
}

// RMS returns the root-mean-square amplitude of window, or 0 for an empty
// window.
func RMS(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(window, window) / float64(len(window)))
}
