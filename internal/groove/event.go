package groove

import "math"

// Source identifies where a transient came from.
type Source int

const (
	SourceAudio Source = iota
	SourceMidi
)

// String returns the source name.
func (s Source) String() string {
	if s == SourceMidi {
		return "MIDI"
	}
	return "Audio"
}

// MidiOnset is one detected MIDI note start, in musical time.
type MidiOnset struct {
	PPQ      float64 // Absolute position in quarter notes
	Velocity int
	Note     int
}

// TransientEvent is a single normalized onset, created during learning and
// discarded on reset or lock.
type TransientEvent struct {
	PPQPosition       float64 // Absolute position in quarter notes
	BeatPosition      float64 // Fractional position within the beat, [0, 1)
	BarNumber         int
	SixteenthPosition int // [0, 16) regardless of time signature
	Source            Source
	Velocity          int // MIDI velocity; 100 for audio onsets
	MidiNote          int // -1 for audio onsets
}

// barGrid converts absolute PPQ positions into bar-relative coordinates for
// the current time signature. barLengthQuarters is 4*numerator/denominator
// (4/4 = 4, 3/4 = 3, 6/8 = 3).
type barGrid struct {
	barLengthQuarters float64
}

func (g barGrid) barNumber(ppq float64) int {
	if g.barLengthQuarters <= 0 {
		return 0
	}
	return int(math.Floor(ppq / g.barLengthQuarters))
}

func (g barGrid) ppqInBar(ppq float64) float64 {
	if g.barLengthQuarters <= 0 {
		return 0
	}
	return math.Mod(ppq, g.barLengthQuarters)
}

// sixteenthPos maps a bar-relative PPQ position to a 16th-note bin. The raw
// index is clamped to the signature's actual subdivision count, then reduced
// mod 16 so the bin is always in [0, 16) for any signature.
func (g barGrid) sixteenthPos(ppqInBar float64) int {
	pos := int(math.Floor(ppqInBar * 4.0))

	maxSixteenths := int(g.barLengthQuarters * 4.0)
	if maxSixteenths < 1 {
		maxSixteenths = 1
	}
	if pos < 0 {
		pos = 0
	}
	if pos > maxSixteenths-1 {
		pos = maxSixteenths - 1
	}
	return pos % 16
}

// newTransientEvent normalizes one onset into bar-relative coordinates.
func newTransientEvent(g barGrid, ppq float64, source Source, velocity, midiNote int) TransientEvent {
	inBar := g.ppqInBar(ppq)
	return TransientEvent{
		PPQPosition:       ppq,
		BeatPosition:      math.Mod(inBar, 1.0),
		BarNumber:         g.barNumber(ppq),
		SixteenthPosition: g.sixteenthPos(inBar),
		Source:            source,
		Velocity:          velocity,
		MidiNote:          midiNote,
	}
}
