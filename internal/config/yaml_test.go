// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with defaults: %v", err)
	}

	if cfg.Groove.BPM != DefaultBPM {
		t.Errorf("BPM = %v, want %v", cfg.Groove.BPM, DefaultBPM)
	}
	if cfg.Groove.AutoLockBars != DefaultAutoLockBars {
		t.Errorf("AutoLockBars = %d, want %d", cfg.Groove.AutoLockBars, DefaultAutoLockBars)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %v, want %v", cfg.Audio.SampleRate, DefaultSampleRate)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	yml := `
groove:
  bpm: 96
  time_sig_num: 3
  time_sig_den: 4
  auto_lock_bars: 8
audio:
  sample_rate: 48000
  frames_per_buffer: 256
  channels: 1
`
	path := filepath.Join(t.TempDir(), "groove.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Groove.BPM != 96 {
		t.Errorf("BPM = %v, want 96", cfg.Groove.BPM)
	}
	if cfg.Groove.TimeSigNum != 3 {
		t.Errorf("TimeSigNum = %d, want 3", cfg.Groove.TimeSigNum)
	}
	if cfg.Audio.FramesPerBuffer != 256 {
		t.Errorf("FramesPerBuffer = %d, want 256", cfg.Audio.FramesPerBuffer)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bpm too low", func(c *Config) { c.Groove.BPM = 10 }},
		{"bpm too high", func(c *Config) { c.Groove.BPM = 500 }},
		{"zero numerator", func(c *Config) { c.Groove.TimeSigNum = 0 }},
		{"denominator not power of two", func(c *Config) { c.Groove.TimeSigDen = 3 }},
		{"denominator too large", func(c *Config) { c.Groove.TimeSigDen = 32 }},
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }},
		{"frames per buffer too large", func(c *Config) { c.Audio.FramesPerBuffer = 100000 }},
		{"negative auto lock bars", func(c *Config) { c.Groove.AutoLockBars = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should have failed")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROOVE_BPM", "140")
	t.Setenv("GROOVE_AUTO_LOCK_BARS", "2")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Groove.BPM != 140 {
		t.Errorf("BPM = %v, want 140 from env", cfg.Groove.BPM)
	}
	if cfg.Groove.AutoLockBars != 2 {
		t.Errorf("AutoLockBars = %d, want 2 from env", cfg.Groove.AutoLockBars)
	}
}
