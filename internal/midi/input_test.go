package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"groove/internal/groove"
)

func TestHandleMessageForwardsNoteOns(t *testing.T) {
	learner := groove.NewLearner()
	learner.SetAutoLockEnabled(false)
	learner.StartLearning()

	in := NewInput(learner, 120)

	// Kick, snare, kick: one beat apart at 120 BPM (500ms).
	in.handleMessage(gomidi.NoteOn(0, 36, 110), 1000)
	in.handleMessage(gomidi.NoteOn(0, 38, 96), 1500)
	in.handleMessage(gomidi.NoteOn(0, 36, 110), 2000)

	if got := learner.BarsLearned(); got != 0 {
		t.Errorf("BarsLearned = %d before a bar boundary, want 0", got)
	}

	// Crossing into bar 2 via another note counts the first bar.
	in.handleMessage(gomidi.NoteOn(0, 38, 96), 3500) // ppq 5
	if got := learner.BarsLearned(); got != 1 {
		t.Errorf("BarsLearned = %d after crossing a bar, want 1", got)
	}
}

func TestHandleMessageIgnoresNonNotes(t *testing.T) {
	learner := groove.NewLearner()
	learner.SetAutoLockEnabled(false)
	learner.StartLearning()

	in := NewInput(learner, 120)
	in.handleMessage(gomidi.NoteOff(0, 36), 0)
	in.handleMessage(gomidi.NoteOn(0, 36, 0), 0) // running-status note-off
	in.handleMessage(gomidi.ControlChange(0, 1, 64), 0)

	// None of these should have anchored the timeline or produced hits.
	if in.anchored {
		t.Error("non-note messages anchored the timeline")
	}

	in.handleMessage(gomidi.NoteOn(0, 36, 100), 4000)
	if !in.anchored || in.anchorMs != 4000 {
		t.Errorf("anchor = %v/%d, want anchored at 4000", in.anchored, in.anchorMs)
	}
}

func TestTimestampToPPQ(t *testing.T) {
	learner := groove.NewLearner()
	learner.SetAutoLockEnabled(false)
	learner.StartLearning()

	in := NewInput(learner, 90) // 90 BPM: one beat = 666.7ms

	in.handleMessage(gomidi.NoteOn(0, 42, 80), 2000)
	// Just past four beats later (a beat is 666.7ms at 90 BPM).
	in.handleMessage(gomidi.NoteOn(0, 42, 80), 2000+2667)

	if got := learner.BarsLearned(); got != 1 {
		t.Errorf("BarsLearned = %d after exactly one bar at 90 BPM, want 1", got)
	}
}

func TestStopWithoutStart(t *testing.T) {
	in := NewInput(groove.NewLearner(), 120)
	in.Stop() // must not panic
}
