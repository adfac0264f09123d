package groove

import (
	"math"
	"testing"
)

func TestSixteenthPositionAlwaysInRange(t *testing.T) {
	// Every signature must reduce to a [0, 16) bin, including signatures
	// with more (12/8) or fewer (3/4) than 16 sixteenths per bar.
	signatures := []struct {
		num, den int
	}{
		{4, 4}, {3, 4}, {6, 8}, {7, 8}, {12, 8}, {5, 4}, {2, 2}, {9, 16},
	}

	for _, sig := range signatures {
		g := barGrid{barLengthQuarters: 4.0 * float64(sig.num) / float64(sig.den)}
		for ppq := 0.0; ppq < 32.0; ppq += 0.01 {
			pos := g.sixteenthPos(g.ppqInBar(ppq))
			if pos < 0 || pos >= 16 {
				t.Fatalf("%d/%d: sixteenthPos(%f) = %d, out of [0,16)", sig.num, sig.den, ppq, pos)
			}
		}
	}
}

func TestSixteenthPositionOnGrid(t *testing.T) {
	g := barGrid{barLengthQuarters: 4}

	for i := 0; i < 16; i++ {
		ppqInBar := float64(i) * 0.25
		if pos := g.sixteenthPos(ppqInBar); pos != i {
			t.Errorf("sixteenthPos(%v) = %d, want %d", ppqInBar, pos, i)
		}
	}
}

func TestBarNumber(t *testing.T) {
	tests := []struct {
		barLength float64
		ppq       float64
		expected  int
	}{
		{4, 0, 0},
		{4, 3.99, 0},
		{4, 4, 1},
		{4, 9, 2},
		{3, 3, 1}, // 3/4
		{3, 8.9, 2},
		{0, 100, 0}, // Degenerate bar length
	}

	for _, tt := range tests {
		g := barGrid{barLengthQuarters: tt.barLength}
		if got := g.barNumber(tt.ppq); got != tt.expected {
			t.Errorf("barNumber(%v) with barLength %v = %d, want %d", tt.ppq, tt.barLength, got, tt.expected)
		}
	}
}

func TestNewTransientEventBeatPosition(t *testing.T) {
	g := barGrid{barLengthQuarters: 4}

	ev := newTransientEvent(g, 5.75, SourceAudio, 100, -1)

	if ev.BarNumber != 1 {
		t.Errorf("BarNumber = %d, want 1", ev.BarNumber)
	}
	if math.Abs(ev.BeatPosition-0.75) > 1e-9 {
		t.Errorf("BeatPosition = %v, want 0.75", ev.BeatPosition)
	}
	if ev.SixteenthPosition != 7 { // 1.75 quarters into the bar
		t.Errorf("SixteenthPosition = %d, want 7", ev.SixteenthPosition)
	}
	if ev.MidiNote != -1 {
		t.Errorf("MidiNote = %d, want -1 for audio", ev.MidiNote)
	}
}

func TestMidiEventCarriesVelocityAndNote(t *testing.T) {
	g := barGrid{barLengthQuarters: 4}

	ev := newTransientEvent(g, 1.0, SourceMidi, 96, 38)

	if ev.Source != SourceMidi || ev.Velocity != 96 || ev.MidiNote != 38 {
		t.Errorf("event = %+v, want MIDI source, velocity 96, note 38", ev)
	}
}
