package groove

import "testing"

// feedMidiPattern drives observe with one bar of MIDI hits repeated until
// the classifier has enough data.
func feedMidiPattern(s *aggregateStats, bars int, hits []MidiOnset, swingMs float64) int {
	g := barGrid{barLengthQuarters: 4}
	secondsPerBeat := 0.5
	total := 0

	for bar := 0; bar < bars; bar++ {
		for _, h := range hits {
			ppq := float64(bar)*4.0 + h.PPQ
			// Swing applies to upbeat 16ths only.
			pos := g.sixteenthPos(g.ppqInBar(ppq))
			if pos%2 == 1 {
				ppq += swingMs / 1000.0 / secondsPerBeat
			}
			ev := newTransientEvent(g, ppq, SourceMidi, h.Velocity, h.Note)
			if s.observe(ev, g.ppqInBar(ppq), secondsPerBeat) {
				total++
			}
		}
	}
	return total
}

func TestClassifyGenre(t *testing.T) {
	kick := func(beat float64) MidiOnset { return MidiOnset{PPQ: beat, Velocity: 110, Note: 36} }
	snare := func(beat float64) MidiOnset { return MidiOnset{PPQ: beat, Velocity: 100, Note: 38} }
	hat := func(pos float64) MidiOnset { return MidiOnset{PPQ: pos, Velocity: 70, Note: 42} }

	tests := []struct {
		name     string
		pattern  []MidiOnset
		bars     int
		swingMs  float64
		expected Genre
	}{
		{
			name:     "four on floor straight is electronic",
			pattern:  []MidiOnset{kick(0), kick(1), kick(2), kick(3), hat(0.5), hat(1.5), hat(2.5), hat(3.5)},
			bars:     4,
			expected: GenreElectronic,
		},
		{
			name:     "straight backbeat is rock",
			pattern:  []MidiOnset{kick(0), kick(2), snare(1), snare(3), hat(0.5), hat(1.5), hat(2.5), hat(3.5)},
			bars:     4,
			expected: GenreRock,
		},
		{
			// The half-time comparison divides by 6, so the snare needs at
			// least 6 total hits before the off-beat floor bites.
			name:     "half time snare is trap",
			pattern:  []MidiOnset{kick(0), snare(2), hat(0.5), hat(1.5), hat(2.5), hat(3.5)},
			bars:     8,
			expected: GenreTrap,
		},
		{
			// Heavy swing on sparse upbeats (2 of 10 hits, density 0.2)
			// with a backbeat: jazz, not funk.
			name:     "heavy swing with backbeat and sparse upbeats is jazz",
			pattern:  []MidiOnset{kick(0), kick(2), snare(1), snare(3), hat(0.5), hat(1.5), hat(2.5), hat(3.5), hat(0.25), hat(2.25)},
			bars:     4,
			swingMs:  20,
			expected: GenreJazz,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAggregateStats()
			total := feedMidiPattern(s, tt.bars, tt.pattern, tt.swingMs)

			genre, ok := classifyGenre(s, total)
			if !ok {
				t.Fatalf("classifier wanted more data at %d hits", total)
			}
			if genre != tt.expected {
				t.Errorf("genre = %v, want %v", genre, tt.expected)
			}
		})
	}
}

func TestClassifyGenreSwungSixteenths(t *testing.T) {
	// Dense swung 16ths: hats on every 16th, upbeats 8ms late.
	var pattern []MidiOnset
	for i := 0; i < 16; i++ {
		pattern = append(pattern, MidiOnset{PPQ: float64(i) * 0.25, Velocity: 80, Note: 42})
	}

	s := newAggregateStats()
	total := feedMidiPattern(s, 2, pattern, 8)

	genre, ok := classifyGenre(s, total)
	if !ok {
		t.Fatalf("classifier wanted more data at %d hits", total)
	}
	// Half the hits are upbeat 16ths (density 0.5 > 0.4) with moderate swing.
	if genre != GenreRnB {
		t.Errorf("genre = %v, want %v", genre, GenreRnB)
	}
}

func TestClassifyGenreInsufficientData(t *testing.T) {
	s := newAggregateStats()

	if _, ok := classifyGenre(s, minHitsForValidGroove*2-1); ok {
		t.Error("classifier should hold its answer below 2x the minimum hit count")
	}
}

func TestGenreStrings(t *testing.T) {
	tests := []struct {
		genre    Genre
		expected string
	}{
		{GenreUnknown, "Unknown"},
		{GenreRock, "Rock"},
		{GenreHipHop, "HipHop"},
		{GenreRnB, "R&B"},
		{GenreElectronic, "Electronic"},
		{GenreTrap, "Trap"},
		{GenreJazz, "Jazz"},
		{GenreFunk, "Funk"},
		{GenreSongwriter, "Songwriter"},
		{GenreLatin, "Latin"},
		{Genre(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.genre.String(); got != tt.expected {
			t.Errorf("Genre(%d).String() = %q, want %q", tt.genre, got, tt.expected)
		}
	}
}
