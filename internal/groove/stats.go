package groove

import (
	"math"

	"groove/pkg/ringbuf"
)

// GM percussion note ranges used for kick/snare histogram tracking.
const (
	gmKickLow   = 35
	gmKickHigh  = 36
	gmSnareLow  = 38
	gmSnareHigh = 40
)

// maxIOIHistory bounds the inter-onset interval ring used for tempo drift.
const maxIOIHistory = 64

// aggregateStats holds every accumulator the learner maintains while in the
// Learning state. It is owned exclusively by the audio-thread writer and only
// touched inside the learner's critical section; readers see derived values
// through atomics and published snapshots, never this struct.
type aggregateStats struct {
	hitCounts      [16]int
	avgDeviations  [16]float64 // Running-mean timing deviation per bin, ms
	avgVelocities  [16]float64 // Running-mean velocity per bin
	velocityCounts [16]int

	// Genre detection accumulators
	kickBeatHits      [4]int // Kick hits on beats 1-4
	snareBeatHits     [4]int // Snare hits on beats 1-4
	accumulatedSwing  float64
	swingSamples      int
	sixteenthNoteHits int // Hits on pure 16th (odd) positions

	// Tempo drift: bounded inter-onset interval history in beats
	iois         *ringbuf.Ring
	lastOnsetPPQ float64
}

func newAggregateStats() *aggregateStats {
	s := &aggregateStats{iois: ringbuf.New(maxIOIHistory)}
	s.reset()
	return s
}

func (s *aggregateStats) reset() {
	s.hitCounts = [16]int{}
	s.avgDeviations = [16]float64{}
	s.avgVelocities = [16]float64{}
	s.velocityCounts = [16]int{}
	s.kickBeatHits = [4]int{}
	s.snareBeatHits = [4]int{}
	s.accumulatedSwing = 0
	s.swingSamples = 0
	s.sixteenthNoteHits = 0
	s.iois.Reset()
	s.lastOnsetPPQ = -1
}

// observe folds one transient into the aggregates and reports whether the
// event landed in a valid bin (and therefore counts toward totalHits).
// ppqInBar and secondsPerBeat are passed in so the hot path computes them
// once per event.
func (s *aggregateStats) observe(ev TransientEvent, ppqInBar, secondsPerBeat float64) bool {
	// Inter-onset interval tracking happens for every event, valid bin or
	// not. Intervals outside (0, 4) beats are discarded as gaps.
	if s.lastOnsetPPQ >= 0 {
		if ioi := ev.PPQPosition - s.lastOnsetPPQ; ioi > 0 && ioi < 4 {
			s.iois.Push(ioi)
		}
	}
	s.lastOnsetPPQ = ev.PPQPosition

	pos := ev.SixteenthPosition
	if pos < 0 || pos >= 16 {
		return false
	}

	s.hitCounts[pos]++

	// Deviation from the straight 16th grid, in milliseconds.
	gridPPQ := math.Floor(ppqInBar*4.0) / 4.0
	deviationMs := (ppqInBar - gridPPQ) * secondsPerBeat * 1000.0

	// Canonical incremental mean: avg = avg*(n-1)/n + x/n.
	n := float64(s.hitCounts[pos])
	s.avgDeviations[pos] = s.avgDeviations[pos]*(n-1)/n + deviationMs/n

	if ev.Velocity > 0 {
		s.velocityCounts[pos]++
		vn := float64(s.velocityCounts[pos])
		s.avgVelocities[pos] = s.avgVelocities[pos]*(vn-1)/vn + float64(ev.Velocity)/vn
	}

	// Odd bins are the pure-16th positions; they drive both the division
	// estimate and the swing accumulator.
	if pos%2 == 1 {
		s.sixteenthNoteHits++
		s.accumulatedSwing += deviationMs
		s.swingSamples++
	}

	// Kick/snare-per-beat histograms feed the genre classifier; only MIDI
	// events carry a usable note number.
	if ev.Source == SourceMidi && ev.MidiNote >= 0 {
		beat := pos / 4
		if ev.MidiNote >= gmKickLow && ev.MidiNote <= gmKickHigh {
			s.kickBeatHits[beat]++
		}
		if ev.MidiNote >= gmSnareLow && ev.MidiNote <= gmSnareHigh {
			s.snareBeatHits[beat]++
		}
	}

	return true
}

func (s *aggregateStats) maxHitCount() int {
	max := 0
	for _, c := range s.hitCounts {
		if c > max {
			max = c
		}
	}
	return max
}
