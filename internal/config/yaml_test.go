// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "gtuner.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Audio.WindowSize != DefaultWindowSize || cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("expected default audio settings, got %+v", cfg.Audio)
	}
	if cfg.Tuner.MinRMS != 0.008 || cfg.Tuner.MinCorrelation != 0.01 {
		t.Errorf("expected default gates, got %+v", cfg.Tuner)
	}
	if cfg.Tuner.SmoothingWindow != 5 {
		t.Errorf("expected smoothing window 5, got %d", cfg.Tuner.SmoothingWindow)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
audio:
  sample_rate: 44100
  window_size: 4096
tuner:
  min_rms: 0.02
  tick_interval: 40ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.WindowSize != 4096 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Tuner.MinRMS != 0.02 || cfg.Tuner.TickInterval != 40*time.Millisecond {
		t.Errorf("tuner = %+v", cfg.Tuner)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Tuner.MaxFrequency != DefaultMaxFrequency {
		t.Errorf("MaxFrequency = %v, want default", cfg.Tuner.MaxFrequency)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "transport:\n  udp_enabled: false\n")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.2:7000")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "50ms")
	t.Setenv("ENV_SAMPLE_RATE", "not-a-number")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.2:7000" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("UDPSendInterval = %v", cfg.Transport.UDPSendInterval)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("unparseable override should be ignored, got %v", cfg.Audio.SampleRate)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"Window not power of two", func(c *Config) { c.Audio.WindowSize = 2000 }, "try 2048"},
		{"Window too short for low band", func(c *Config) {
			c.Audio.SampleRate = 96000
			c.Audio.WindowSize = 1024
		}, "too small"},
		{"Inverted band", func(c *Config) { c.Tuner.MinFrequency = 1200 }, "frequency band"},
		{"Sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }, "audio.sample_rate"},
		{"Zero smoothing", func(c *Config) { c.Tuner.SmoothingWindow = 0 }, "smoothing_window"},
		{"Zero tick", func(c *Config) { c.Tuner.TickInterval = 0 }, "tick_interval"},
		{"Bad bit depth", func(c *Config) {
			c.Recording.Enabled = true
			c.Recording.BitDepth = 12
		}, "bit_depth"},
		{"UDP without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "missing port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
