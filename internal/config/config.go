// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults for a six-string tuner listening on the system microphone.
const (
	DefaultDeviceID   = MinDeviceID // System default input device
	DefaultSampleRate = 48000       // What most capture hosts deliver natively
	DefaultWindowSize = 2048        // Responsiveness vs. low-string resolution

	DefaultMinRMS          = 0.008 // Noise floor on a [-1,1] scale
	DefaultMinCorrelation  = 0.01  // Below this the signal is too noise-like
	DefaultMinFrequency    = 60.0  // Below the low E with some slack
	DefaultMaxFrequency    = 1000.0
	DefaultSmoothingWindow = 5
	DefaultInTuneCents     = 3.0
	DefaultTickInterval    = 16 * time.Millisecond // ~60 frames per second

	DefaultBitDepth         = 16
	DefaultRecordingDir     = "./recordings"
	DefaultWebSocketAddress = ":8080"
	DefaultUDPTarget        = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond

	MinDeviceID   = -1 // -1 represents the system default device
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxWindowSize = 16384
)

// Config is the tuner's runtime configuration, loaded from YAML and
// overridden by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Audio     AudioConfig     `yaml:"audio"`
	Tuner     TunerConfig     `yaml:"tuner"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture settings. The three processing switches are
// requested off: echo cancellation, noise suppression and automatic gain
// all distort the waveform the detector looks at.
type AudioConfig struct {
	InputDevice      int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate       float64 `yaml:"sample_rate"`       // Requested capture rate in Hz.
	WindowSize       int     `yaml:"window_size"`       // Samples per analysis window (power of two).
	LowLatency       bool    `yaml:"low_latency"`       // Use the device's low input latency.
	EchoCancellation bool    `yaml:"echo_cancellation"` // Request host echo cancellation.
	NoiseSuppression bool    `yaml:"noise_suppression"` // Request host noise suppression.
	AutoGainControl  bool    `yaml:"auto_gain_control"` // Request host automatic gain.
}

// TunerConfig holds the detection thresholds. The two gates (min_rms and
// min_correlation) are empirical and kept configurable.
type TunerConfig struct {
	MinRMS          float64       `yaml:"min_rms"`
	MinCorrelation  float64       `yaml:"min_correlation"`
	MinFrequency    float64       `yaml:"min_frequency"`
	MaxFrequency    float64       `yaml:"max_frequency"`
	SmoothingWindow int           `yaml:"smoothing_window"`
	InTuneCents     float64       `yaml:"in_tune_cents"`
	TickInterval    time.Duration `yaml:"tick_interval"`
}

// RecordingConfig controls writing the captured input to WAV.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	BitDepth  int    `yaml:"bit_depth"`
}

// TransportConfig controls the network display sinks.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice: DefaultDeviceID,
			SampleRate:  DefaultSampleRate,
			WindowSize:  DefaultWindowSize,
		},
		Tuner: TunerConfig{
			MinRMS:          DefaultMinRMS,
			MinCorrelation:  DefaultMinCorrelation,
			MinFrequency:    DefaultMinFrequency,
			MaxFrequency:    DefaultMaxFrequency,
			SmoothingWindow: DefaultSmoothingWindow,
			InTuneCents:     DefaultInTuneCents,
			TickInterval:    DefaultTickInterval,
		},
		Recording: RecordingConfig{
			OutputDir: DefaultRecordingDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
