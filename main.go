package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"groove/cmd"
	"groove/internal/audio"
	"groove/internal/config"
	"groove/internal/groove"
	"groove/internal/log"
	"groove/internal/midi"
	"groove/internal/transport"
	"groove/internal/tui"
	"groove/pkg/build"
)

// main is the entry point for the groove learning application.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start the capture engine and onset detection
//   - Begin learning, recording, and MIDI input if enabled
//   - Publish snapshots and run the monitor UI
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop recording if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Warnf("build info unavailable: %v", err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the capture callback (time-critical)
	// - One thread for UI and I/O operations
	runtime.GOMAXPROCS(2)

	inv, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}
	cfg := inv.Config

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}

	switch inv.Command {
	case cmd.CommandList:
		if err := runList(); err != nil {
			log.Fatalf("%v", err)
		}
	case cmd.CommandAnalyze:
		if err := runAnalyze(inv.File, cfg); err != nil {
			log.Fatalf("%v", err)
		}
	default:
		if err := runLearn(cfg); err != nil {
			log.Fatalf("%v", err)
		}
	}
}

// runList prints the available audio input devices and MIDI input ports.
func runList() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	if err := audio.ListDevices(); err != nil {
		return err
	}

	fmt.Printf("Available MIDI Inputs\n\n")
	ports := midi.ListPorts()
	if len(ports) == 0 {
		fmt.Println("  (none)")
	}
	for i, name := range ports {
		fmt.Printf("[%d] %s\n", i, name)
	}
	midi.CloseDriver()
	return nil
}

// runAnalyze learns a groove offline from a WAV file and prints the result.
func runAnalyze(path string, cfg *config.Config) error {
	learner, err := newLearner(cfg)
	if err != nil {
		return err
	}
	if err := audio.LearnFromWAV(path, learner, cfg); err != nil {
		return err
	}
	printSummary(learner.Snapshot())
	return nil
}

// runLearn runs the live capture session: audio engine, optional MIDI input,
// optional recording and transports, and the monitor UI or a signal wait.
func runLearn(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	learner, err := newLearner(cfg)
	if err != nil {
		return err
	}

	engine, err := audio.NewEngine(cfg, learner)
	if err != nil {
		return err
	}

	// CRITICAL: the first call to StartInputStream triggers the device
	// callback, marking the start of the hot path.
	if err := engine.StartInputStream(); err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Errorf("closing audio engine: %v", err)
		}
	}()

	if cfg.Record.Enabled {
		if err := engine.StartRecording(cfg.Record.OutputFile); err != nil {
			return err
		}
	}

	var midiIn *midi.Input
	if cfg.Groove.MidiInput != "" {
		midiIn = midi.NewInput(learner, cfg.Groove.BPM)
		if err := midiIn.Start(cfg.Groove.MidiInput); err != nil {
			log.Warnf("MIDI input disabled: %v", err)
			midiIn = nil
		} else {
			defer midi.CloseDriver()
			defer midiIn.Stop()
		}
	}

	publisher := startTransports(cfg, learner)
	if publisher != nil {
		defer publisher.Stop()
	}

	learner.StartLearning()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if cfg.Monitor.Enabled {
		refresh := time.Duration(cfg.Monitor.RefreshEvery) * time.Millisecond
		if err := tui.StartMonitorUI(learner, refresh); err != nil {
			return err
		}
	} else {
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if cfg.Record.Enabled {
		if err := engine.StopRecording(); err != nil {
			log.Errorf("stopping recording: %v", err)
		}
	}

	printSummary(learner.Snapshot())
	return nil
}

// newLearner builds a learner from the groove configuration.
func newLearner(cfg *config.Config) (*groove.Learner, error) {
	learner := groove.NewLearner()
	if err := learner.Prepare(cfg.Audio.SampleRate, cfg.Groove.BPM); err != nil {
		return nil, err
	}
	if err := learner.SetTimeSignature(cfg.Groove.TimeSigNum, cfg.Groove.TimeSigDen); err != nil {
		return nil, err
	}
	learner.SetAutoLockBars(cfg.Groove.AutoLockBars)
	learner.SetAutoLockEnabled(cfg.Groove.AutoLock)
	learner.SetMultiSourceEnabled(cfg.Groove.MultiSource)
	return learner, nil
}

// startTransports wires up the enabled snapshot transports behind a
// publisher. Returns nil when no transport is enabled.
func startTransports(cfg *config.Config, learner *groove.Learner) *transport.Publisher {
	var targets []transport.Transport

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err != nil {
			log.Warnf("WebSocket transport disabled: %v", err)
		} else {
			log.Infof("serving snapshots on ws://%s/ws", ws.Addr())
			targets = append(targets, ws)
		}
	}
	if cfg.Transport.UDPEnabled {
		udp, err := transport.NewUDPTransport(cfg.Transport.UDPTargetAddress)
		if err != nil {
			log.Warnf("UDP transport disabled: %v", err)
		} else {
			targets = append(targets, udp)
		}
	}
	if cfg.Debug {
		targets = append(targets, transport.NewLoggingTransport())
	}
	if len(targets) == 0 {
		return nil
	}

	interval := time.Duration(cfg.Transport.SendIntervalMs) * time.Millisecond
	publisher := transport.NewPublisher(learner, interval, targets...)
	publisher.Start()
	return publisher
}

// printSummary writes the learned groove to stdout.
func printSummary(s groove.Snapshot) {
	fmt.Printf("\nGroove: %s\n", s.State)
	fmt.Printf("  Bars:        %d\n", s.BarsLearned)
	fmt.Printf("  Confidence:  %.0f%%\n", s.Confidence*100)
	fmt.Printf("  Genre:       %s\n", s.Genre)

	t := s.Template
	if t.NoteCount == 0 {
		return
	}
	fmt.Printf("  Swing:       16th %.0f%%, 8th %.0f%% (division: %dths)\n",
		t.Swing16*200, t.Swing8*200, t.PrimaryDivision)
	fmt.Printf("  Feel:        energy %.0f%%, density %.0f%%, syncopation %.0f%%\n",
		t.Energy*100, t.Density*100, t.Syncopation*100)
	fmt.Printf("  Transients:  %d\n", t.NoteCount)
}
