package config

// Boundaries and defaults for the capture engine and the groove learner.
const (
	// Audio engine defaults
	DefaultChannels        = 1     // Mono sidechain input
	DefaultDeviceID        = MinDeviceID
	DefaultFramesPerBuffer = 512   // Balanced latency/resolution
	DefaultLowLatency      = false // Standard latency mode
	DefaultSampleRate      = 44100 // CD-quality audio

	// Groove learner defaults
	DefaultBPM             = 120.0
	DefaultTimeSigNum      = 4
	DefaultTimeSigDen      = 4
	DefaultAutoLockBars    = 4
	DefaultAutoLockEnabled = true

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)

	// Tempo limits shared with the learner's validation
	MinBPM = 20.0
	MaxBPM = 300.0
)

// Config holds all runtime configuration, built from defaults, an optional
// YAML file, environment overrides, and command line flags (in that order).
type Config struct {
	Debug    bool            `yaml:"debug"`
	LogLevel string          `yaml:"log_level"`
	Audio    AudioConfig     `yaml:"audio"`
	Groove   GrooveConfig    `yaml:"groove"`
	Record   RecordConfig    `yaml:"recording"`
	Monitor  MonitorConfig   `yaml:"monitor"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per processing block
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device
	Channels        int     `yaml:"channels"`          // 1=mono, 2=stereo (mono-mixed before analysis)
}

// GrooveConfig holds learner settings.
type GrooveConfig struct {
	BPM          float64 `yaml:"bpm"`            // Host tempo, 20-300
	TimeSigNum   int     `yaml:"time_sig_num"`   // Time signature numerator
	TimeSigDen   int     `yaml:"time_sig_den"`   // Denominator, power of two <= 16
	AutoLockBars int     `yaml:"auto_lock_bars"` // Bars before auto-lock
	AutoLock     bool    `yaml:"auto_lock"`      // Enable auto-lock at the bar target
	MultiSource  bool    `yaml:"multi_source"`   // Combine MIDI + audio transients
	MidiInput    string  `yaml:"midi_input"`     // Substring match for the MIDI in port ("" = disabled)
}

// RecordConfig controls recording of the input being learned from.
type RecordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // "" = auto-generated name
}

// MonitorConfig controls the terminal learning monitor.
type MonitorConfig struct {
	Enabled      bool `yaml:"enabled"`
	RefreshEvery int  `yaml:"refresh_ms"` // Poll interval in milliseconds
}

// TransportConfig controls snapshot publication to external UIs.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"` // e.g. ":8080"
	UDPEnabled       bool   `yaml:"udp_enabled"`
	UDPTargetAddress string `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090"
	SendIntervalMs   int    `yaml:"send_interval_ms"`   // Interval between snapshot sends
}

// NewConfig returns a Config populated with defaults. This is the base
// before YAML, environment, and flag overrides are applied.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			Channels:        DefaultChannels,
		},
		Groove: GrooveConfig{
			BPM:          DefaultBPM,
			TimeSigNum:   DefaultTimeSigNum,
			TimeSigDen:   DefaultTimeSigDen,
			AutoLockBars: DefaultAutoLockBars,
			AutoLock:     DefaultAutoLockEnabled,
		},
		Monitor: MonitorConfig{
			Enabled:      true,
			RefreshEvery: 100,
		},
		Transport: TransportConfig{
			WebSocketAddr:    ":8080",
			UDPTargetAddress: "127.0.0.1:9090",
			SendIntervalMs:   100,
		},
	}
}
