/*
Package midi feeds note-on events from a hardware MIDI input into the groove
learner as transients carrying their note number and velocity.

Driver timestamps arrive in milliseconds; the first note anchors the musical
timeline and subsequent positions are derived through the host tempo.
*/
package midi

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register the MIDI driver

	"groove/internal/groove"
	"groove/internal/log"
)

// Input forwards note-ons from one MIDI in port to the learner.
type Input struct {
	learner *groove.Learner
	bpm     float64

	port drivers.In
	stop func()

	// Accessed only from the driver's callback goroutine.
	anchored bool
	anchorMs int32
	batch    [1]groove.MidiOnset
}

// NewInput returns an unstarted input for the given tempo.
func NewInput(learner *groove.Learner, bpm float64) *Input {
	return &Input{learner: learner, bpm: bpm}
}

// ListPorts returns the names of all available MIDI input ports.
func ListPorts() []string {
	ports := gomidi.GetInPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}

// findInputPort resolves a case-insensitive substring match against the
// available input ports.
func findInputPort(name string) (drivers.In, error) {
	ports := gomidi.GetInPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("no MIDI input ports available")
	}

	needle := strings.ToLower(name)
	for i, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return ports[i], nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q (available: %s)",
		name, strings.Join(ListPorts(), ", "))
}

// Start opens the first input port matching portName and begins listening.
func (i *Input) Start(portName string) error {
	port, err := findInputPort(portName)
	if err != nil {
		return err
	}
	i.port = port

	stop, err := gomidi.ListenTo(port, i.handleMessage)
	if err != nil {
		return fmt.Errorf("open MIDI input %q: %w", port.String(), err)
	}
	i.stop = stop

	log.Infof("midi: listening on %q", port.String())
	return nil
}

// handleMessage converts one incoming message into a learner onset. Note-offs
// and zero-velocity note-ons are dropped.
func (i *Input) handleMessage(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}

	if !i.anchored {
		i.anchorMs = timestampms
		i.anchored = true
	}
	ppq := float64(timestampms-i.anchorMs) / 1000.0 * i.bpm / 60.0

	i.batch[0] = groove.MidiOnset{PPQ: ppq, Velocity: int(velocity), Note: int(note)}
	i.learner.ProcessMidiOnsets(i.batch[:], ppq)
}

// Stop detaches the listener. Safe to call when never started.
func (i *Input) Stop() {
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
}

// CloseDriver releases the MIDI driver. Call once at shutdown.
func CloseDriver() {
	gomidi.Close()
}
