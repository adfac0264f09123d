// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"groove/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file. If path is empty it
// searches default locations ("groove.yaml", "config.yaml"); if no file is
// found the built-in defaults are used. Environment overrides are applied
// after the file, and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"groove.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against the engine's hard limits.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d outside (0, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels %d must be 1 or 2", c.Audio.Channels)
	}
	if c.Groove.BPM < MinBPM || c.Groove.BPM > MaxBPM {
		return fmt.Errorf("groove.bpm %.1f outside [%.0f, %.0f]", c.Groove.BPM, MinBPM, MaxBPM)
	}
	if c.Groove.TimeSigNum <= 0 {
		return fmt.Errorf("groove.time_sig_num %d must be positive", c.Groove.TimeSigNum)
	}
	if !bitint.IsPowerOfTwo(c.Groove.TimeSigDen) || c.Groove.TimeSigDen > 16 {
		return fmt.Errorf("groove.time_sig_den %d must be a power of two <= 16", c.Groove.TimeSigDen)
	}
	if c.Groove.AutoLockBars < 0 {
		return fmt.Errorf("groove.auto_lock_bars %d must not be negative", c.Groove.AutoLockBars)
	}
	return nil
}

// applyEnvOverrides applies GROOVE_* environment variables on top of the
// loaded configuration. Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("GROOVE_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("GROOVE_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("GROOVE_BPM"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Groove.BPM = f
		}
	}
	if val, ok := os.LookupEnv("GROOVE_AUTO_LOCK_BARS"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Groove.AutoLockBars = n
		}
	}
	if val, ok := os.LookupEnv("GROOVE_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
		c.Transport.WebSocketEnabled = true
	}
	if val, ok := os.LookupEnv("GROOVE_UDP_TARGET"); ok {
		c.Transport.UDPTargetAddress = val
		c.Transport.UDPEnabled = true
	}
}
