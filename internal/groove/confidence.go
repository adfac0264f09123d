package groove

import "math"

// patternConsistency measures how repeatable the hit pattern is: the
// coefficient of variation across populated bins, inverted so that an even
// spread of hits scores high. Returns 0.5 when there is nothing to measure.
func patternConsistency(s *aggregateStats) float64 {
	if s.maxHitCount() == 0 {
		return 0.5
	}

	sum := 0.0
	nonZero := 0
	for _, c := range s.hitCounts {
		if c > 0 {
			sum += float64(c)
			nonZero++
		}
	}
	if nonZero == 0 {
		return 0.5
	}

	mean := sum / float64(nonZero)
	variance := 0.0
	for _, c := range s.hitCounts {
		if c > 0 {
			diff := float64(c) - mean
			variance += diff * diff
		}
	}
	variance /= float64(nonZero)

	cv := 1.0
	if mean > 0 {
		cv = math.Sqrt(variance) / mean
	}
	return math.Max(0, 1.0-cv)
}

// confidenceScore combines the individual signals into the published 0..1
// confidence. The caller supplies the atomic counters so the aggregates stay
// writer-owned.
func confidenceScore(bars, hits, audioHits, midiHits int, pattern, tempoStability float64) float64 {
	if hits < minHitsForValidGroove {
		return 0
	}

	barConfidence := math.Min(1, float64(bars)/4.0)
	hitConfidence := math.Min(1, float64(hits)/32.0)

	multiSourceBonus := 0.0
	if audioHits > 4 && midiHits > 4 {
		multiSourceBonus = 0.1
	}

	confidence := barConfidence*0.25 +
		hitConfidence*0.25 +
		pattern*0.25 +
		tempoStability*0.15 +
		multiSourceBonus

	return math.Min(1, confidence+0.1) // Small baseline boost
}
