package groove

import "math"

// Template is the learned summary of a player's timing, accent, and density
// habits. A published Template is immutable; consumers receive a value copy
// and may hold it indefinitely.
type Template struct {
	Swing16 float64 `json:"swing16"` // 16th-note swing, [0, 0.5]
	Swing8  float64 `json:"swing8"`  // 8th-note swing, [0, 0.5]

	// MicroOffset holds per-32nd-note timing offsets in milliseconds; each
	// 16th-bin deviation is duplicated into its two 32nd slots.
	MicroOffset [32]float64 `json:"microOffset"`

	// AccentPattern holds the normalized relative accent per 16th bin,
	// 0.3 + 0.7*(hits/maxHits).
	AccentPattern [16]float64 `json:"accentPattern"`

	Energy      float64 `json:"energy"`      // Hits per bar vs available subdivisions, [0, 1]
	Density     float64 `json:"density"`     // Fraction of 16th bins ever hit, [0, 1]
	Syncopation float64 `json:"syncopation"` // Fraction of hits off the main beats, [0, 1]

	PrimaryDivision int `json:"primaryDivision"` // 8 or 16
	NoteCount       int `json:"noteCount"`
}

// defaultTemplate is the neutral groove used before anything is learned and
// when the bounded-wait fallback locks with no data.
func defaultTemplate() Template {
	return Template{PrimaryDivision: 8}
}

func clampUnit(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func clampHalf(v float64) float64 {
	return math.Min(0.5, math.Max(0, v))
}

// buildTemplate derives a full Template from the current aggregates. Called
// only with totalHits >= minHitsForValidGroove, inside the learner's critical
// section; the returned value is published atomically and never mutated again.
func buildTemplate(s *aggregateStats, bpm float64, bars, timeSigNum, totalHits int) Template {
	t := defaultTemplate()
	t.NoteCount = totalHits

	t.Swing16 = swing16FromHits(s, bpm)

	// 8th-note swing: for each beat whose downbeat and 8th offbeat are both
	// populated, accumulate the offbeat's deviation. 30ms late is treated as
	// full triplet swing.
	eighthSwing := 0.0
	eighthPairs := 0
	for i := 0; i < 16; i += 4 {
		if s.hitCounts[i] > 0 && s.hitCounts[i+2] > 0 {
			eighthSwing += s.avgDeviations[i+2]
			eighthPairs++
		}
	}
	if eighthPairs > 0 {
		t.Swing8 = clampHalf(eighthSwing / float64(eighthPairs) / 30.0)
	}

	// Micro-timing: duplicate each 16th deviation into both 32nd slots.
	for i := 0; i < 16; i++ {
		t.MicroOffset[i*2] = s.avgDeviations[i]
		t.MicroOffset[i*2+1] = s.avgDeviations[i]
	}

	// Accents from relative hit density.
	if maxHits := s.maxHitCount(); maxHits > 0 {
		for i := 0; i < 16; i++ {
			t.AccentPattern[i] = 0.3 + 0.7*(float64(s.hitCounts[i])/float64(maxHits))
		}
	}

	// Energy: average hits per bar against the subdivisions available.
	sixteenthsPerBar := timeSigNum * 4
	if bars < 1 {
		bars = 1
	}
	avgHitsPerBar := float64(totalHits) / float64(bars)
	t.Energy = clampUnit(avgHitsPerBar / float64(sixteenthsPerBar))

	// Density: fraction of bins ever hit.
	active := 0
	for _, c := range s.hitCounts {
		if c > 0 {
			active++
		}
	}
	t.Density = float64(active) / 16.0

	// Syncopation: everything not on beats 1-4.
	onBeat := s.hitCounts[0] + s.hitCounts[4] + s.hitCounts[8] + s.hitCounts[12]
	if totalHits > 0 {
		t.Syncopation = float64(totalHits-onBeat) / float64(totalHits)
	}

	// Primary division: 16ths dominate once odd-bin hits exceed a quarter
	// of all hits.
	if s.sixteenthNoteHits > totalHits/4 {
		t.PrimaryDivision = 16
	} else {
		t.PrimaryDivision = 8
	}

	return t
}

// swing16FromHits averages the deviation of populated odd bins and maps it
// onto [0, 0.5], where a third of a 16th interval counts as maximum swing.
func swing16FromHits(s *aggregateStats, bpm float64) float64 {
	totalDeviation := 0.0
	count := 0
	for i := 1; i < 16; i += 2 {
		if s.hitCounts[i] > 0 {
			totalDeviation += s.avgDeviations[i]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	avgDev := totalDeviation / float64(count)

	msPerSixteenth := (60000.0 / bpm) / 4.0
	maxSwingMs := msPerSixteenth * 0.33

	return clampHalf(avgDev / maxSwingMs * 0.5)
}
