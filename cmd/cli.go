// Package cmd parses the command line into a validated configuration and a
// selected command. Precedence: defaults, then YAML file, then GROOVE_*
// environment variables, then flags.
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"groove/internal/config"
	"groove/pkg/build"
)

// Commands selectable from the CLI.
const (
	CommandLearn   = "learn"   // live capture + monitor (default)
	CommandList    = "list"    // print audio devices and MIDI ports
	CommandAnalyze = "analyze" // offline learning from a WAV file
)

// Invocation is the parsed result handed to main.
type Invocation struct {
	Config  *config.Config
	Command string
	File    string // analyze target
}

// ParseArgs parses os.Args.
func ParseArgs() (*Invocation, error) {
	return ParseArgsFrom(os.Args[1:])
}

// ParseArgsFrom parses the given arguments; split out for tests.
func ParseArgsFrom(args []string) (*Invocation, error) {
	buildInfo := build.GetBuildFlags()

	// Flag values land here first; only flags the user actually set are
	// copied onto the loaded configuration.
	flagCfg := config.NewConfig()
	inv := &Invocation{Command: CommandLearn}

	var (
		configPath string
		timeSig    string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           "groove",
		Short:         "Learn a groove template from live audio or MIDI input",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := applyFlagOverrides(cmd, cfg, flagCfg, timeSig, verbose); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			inv.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv.Command = CommandLearn
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices and MIDI input ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			inv.Command = CommandList
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Learn a groove template from a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv.Command = CommandAnalyze
			inv.File = args[0]
			return nil
		},
	}
	rootCmd.AddCommand(analyzeCmd)

	pf := rootCmd.PersistentFlags()

	// Capture
	pf.IntVarP(&flagCfg.Audio.InputDevice, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' to see available devices.")
	pf.IntVarP(&flagCfg.Audio.Channels, "channels", "c", config.DefaultChannels,
		"Number of input channels (1=mono, 2=stereo)")
	pf.Float64VarP(&flagCfg.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hertz (Hz)")
	pf.IntVarP(&flagCfg.Audio.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Frames per processing block (affects latency)")
	pf.BoolVarP(&flagCfg.Audio.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Request low latency from the input device")

	// Groove
	pf.Float64VarP(&flagCfg.Groove.BPM, "bpm", "t", config.DefaultBPM,
		"Host tempo in beats per minute")
	pf.StringVar(&timeSig, "time-sig", "4/4",
		"Time signature, e.g. 4/4, 6/8")
	pf.IntVarP(&flagCfg.Groove.AutoLockBars, "auto-lock-bars", "a", config.DefaultAutoLockBars,
		"Bars to analyze before the groove locks automatically")
	pf.BoolVar(&flagCfg.Groove.AutoLock, "auto-lock", config.DefaultAutoLockEnabled,
		"Lock the groove automatically at the bar target")
	pf.StringVarP(&flagCfg.Groove.MidiInput, "midi", "m", "",
		"MIDI input port name (substring match, empty = audio only)")
	pf.BoolVar(&flagCfg.Groove.MultiSource, "multi-source", false,
		"Combine MIDI and audio transients")

	// Recording
	pf.BoolVarP(&flagCfg.Record.Enabled, "record", "r", false,
		"Record the analyzed input to a WAV file")
	pf.StringVarP(&flagCfg.Record.OutputFile, "output", "o", "",
		"Recording file name (default: groove-<timestamp>.wav)")

	// Transports
	pf.BoolVar(&flagCfg.Transport.WebSocketEnabled, "websocket", false,
		"Serve learner snapshots over WebSocket")
	pf.StringVar(&flagCfg.Transport.WebSocketAddr, "websocket-addr", ":8080",
		"WebSocket listen address")
	pf.StringVar(&flagCfg.Transport.UDPTargetAddress, "udp", "",
		"Send learner snapshots to this UDP address")

	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Show debug output")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return inv, nil
}

// applyFlagOverrides copies explicitly-set flags onto the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg, flagCfg *config.Config, timeSig string, verbose bool) error {
	f := cmd.Flags()

	if f.Changed("device") {
		cfg.Audio.InputDevice = flagCfg.Audio.InputDevice
	}
	if f.Changed("channels") {
		cfg.Audio.Channels = flagCfg.Audio.Channels
	}
	if f.Changed("sample-rate") {
		cfg.Audio.SampleRate = flagCfg.Audio.SampleRate
	}
	if f.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = flagCfg.Audio.FramesPerBuffer
	}
	if f.Changed("low-latency") {
		cfg.Audio.LowLatency = flagCfg.Audio.LowLatency
	}
	if f.Changed("bpm") {
		cfg.Groove.BPM = flagCfg.Groove.BPM
	}
	if f.Changed("time-sig") {
		num, den, err := parseTimeSignature(timeSig)
		if err != nil {
			return err
		}
		cfg.Groove.TimeSigNum = num
		cfg.Groove.TimeSigDen = den
	}
	if f.Changed("auto-lock-bars") {
		cfg.Groove.AutoLockBars = flagCfg.Groove.AutoLockBars
	}
	if f.Changed("auto-lock") {
		cfg.Groove.AutoLock = flagCfg.Groove.AutoLock
	}
	if f.Changed("midi") {
		cfg.Groove.MidiInput = flagCfg.Groove.MidiInput
	}
	if f.Changed("multi-source") {
		cfg.Groove.MultiSource = flagCfg.Groove.MultiSource
	}
	if f.Changed("record") {
		cfg.Record.Enabled = flagCfg.Record.Enabled
	}
	if f.Changed("output") {
		cfg.Record.OutputFile = flagCfg.Record.OutputFile
		cfg.Record.Enabled = true
	}
	if f.Changed("websocket") {
		cfg.Transport.WebSocketEnabled = flagCfg.Transport.WebSocketEnabled
	}
	if f.Changed("websocket-addr") {
		cfg.Transport.WebSocketAddr = flagCfg.Transport.WebSocketAddr
		cfg.Transport.WebSocketEnabled = true
	}
	if f.Changed("udp") {
		cfg.Transport.UDPTargetAddress = flagCfg.Transport.UDPTargetAddress
		cfg.Transport.UDPEnabled = true
	}
	if verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	return nil
}

// parseTimeSignature splits "6/8" into numerator and denominator.
func parseTimeSignature(v string) (int, int, error) {
	parts := strings.SplitN(v, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time signature %q, expected num/den", v)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time signature numerator %q", parts[0])
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time signature denominator %q", parts[1])
	}
	return num, den, nil
}
