// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gtuner/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// DefaultPath is searched when LoadConfig is given an empty path.
const DefaultPath = "gtuner.yaml"

// LoadConfig loads configuration from the YAML file at path. With an empty
// path it tries DefaultPath and falls back to the built-in defaults when no
// file exists. Environment overrides are applied after the file and the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the tuner cannot run with.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device %d is invalid", a.InputDevice))
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if !bitint.IsPowerOfTwo(a.WindowSize) || a.WindowSize > MaxWindowSize {
		errs = append(errs, fmt.Errorf("audio.window_size %d must be a power of two up to %d (try %d)",
			a.WindowSize, MaxWindowSize, bitint.NextPowerOfTwo(a.WindowSize)))
	}

	tn := c.Tuner
	if tn.MinRMS < 0 {
		errs = append(errs, fmt.Errorf("tuner.min_rms must not be negative"))
	}
	if tn.MinCorrelation < 0 {
		errs = append(errs, fmt.Errorf("tuner.min_correlation must not be negative"))
	}
	if tn.MinFrequency <= 0 || tn.MinFrequency >= tn.MaxFrequency {
		errs = append(errs, fmt.Errorf("tuner frequency band [%.1f, %.1f] is invalid", tn.MinFrequency, tn.MaxFrequency))
	} else if maxLag := int(a.SampleRate / tn.MinFrequency); maxLag >= a.WindowSize {
		// The longest lag must leave at least one product in the correlation sum.
		errs = append(errs, fmt.Errorf("audio.window_size %d too small for %.1f Hz at %.0f Hz (needs > %d samples)",
			a.WindowSize, tn.MinFrequency, a.SampleRate, maxLag))
	}
	if tn.SmoothingWindow < 1 {
		errs = append(errs, fmt.Errorf("tuner.smoothing_window must be at least 1"))
	}
	if tn.InTuneCents < 0 {
		errs = append(errs, fmt.Errorf("tuner.in_tune_cents must not be negative"))
	}
	if tn.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tuner.tick_interval must be positive"))
	}

	if c.Recording.Enabled {
		switch c.Recording.BitDepth {
		case 16, 24, 32:
		default:
			errs = append(errs, fmt.Errorf("recording.bit_depth %d must be 16, 24 or 32", c.Recording.BitDepth))
		}
	}

	tr := c.Transport
	if tr.UDPEnabled {
		if !strings.Contains(tr.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", tr.UDPTargetAddress))
		}
		if tr.UDPSendInterval <= 0 {
			errs = append(errs, fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}
	if tr.WebSocketEnabled && tr.WebSocketAddress == "" {
		errs = append(errs, fmt.Errorf("transport.websocket_address must be set when the websocket display is enabled"))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies ENV_* variables on top of the file values.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
	}

	// ENV_SAMPLE_RATE
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Audio.SampleRate = f
		}
	}

	// ENV_WS_{...} and ENV_UDP_{...} are specific to the transport layer.
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
		}
	}
}
