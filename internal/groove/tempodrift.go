package groove

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TempoDrift describes how stable the player's tempo is relative to the
// host tempo, derived from the bounded inter-onset interval history.
type TempoDrift struct {
	DriftPercentage float64 `json:"driftPercentage"` // -100..+100, positive = speeding up
	Stability       float64 `json:"stability"`       // 0 = unstable, 1 = rock solid
	AvgTempo        float64 `json:"avgTempo"`        // Measured average tempo (BPM)
	TempoVariance   float64 `json:"tempoVariance"`   // Variance of IOI measurements
	IsRushing       bool    `json:"isRushing"`
	IsDragging      bool    `json:"isDragging"`
}

// neutralDrift is reported before enough intervals have accumulated.
func neutralDrift() TempoDrift {
	return TempoDrift{Stability: 1.0}
}

// updateTempoDrift derives drift metrics from the IOI ring. scratch must
// have capacity for the full ring so the copy never allocates. Fewer than 8
// intervals yields the neutral result.
func updateTempoDrift(s *aggregateStats, bpm float64, scratch []float64) TempoDrift {
	n := s.iois.CopyTo(scratch)
	if n < 8 {
		return neutralDrift()
	}
	iois := scratch[:n]

	meanIOI := stat.Mean(iois, nil)

	// Population variance: the stability heuristic was tuned against /N,
	// not the sample estimator.
	variance := 0.0
	for _, ioi := range iois {
		diff := ioi - meanIOI
		variance += diff * diff
	}
	variance /= float64(n)
	stdDev := math.Sqrt(variance)

	cv := 1.0
	if meanIOI > 0 {
		cv = stdDev / meanIOI
	}

	drift := TempoDrift{
		Stability:     math.Max(0, 1.0-cv*4.0),
		TempoVariance: variance,
	}

	// Approximate measured tempo from the mean interval. IOIs are in beats,
	// so convert through the host's seconds-per-beat.
	if meanIOI > 0 {
		drift.AvgTempo = 60.0 / (meanIOI * (60.0 / bpm))
	}

	// Rushing/dragging from the trend across the window: shorter intervals
	// in the second half mean the player is speeding up.
	if n >= 16 {
		half := n / 2
		firstHalf := stat.Mean(iois[:half], nil)
		secondHalf := stat.Mean(iois[half:], nil)

		driftRatio := 1.0
		if firstHalf > 0 {
			driftRatio = secondHalf / firstHalf
		}

		drift.DriftPercentage = (1.0 - driftRatio) * 100.0
		drift.IsRushing = driftRatio < 0.97  // > 3% faster
		drift.IsDragging = driftRatio > 1.03 // > 3% slower
	}

	return drift
}
