package groove

import "math"

// Genre is the heuristic style classification derived from the accumulated
// kick/snare histograms, swing amount, and subdivision density.
type Genre int32

const (
	GenreUnknown Genre = iota
	GenreRock          // 4/4, steady 8ths, backbeat snare
	GenreHipHop        // Syncopated kick, sparse snare, swung 16ths
	GenreRnB           // Heavy ghost notes, smooth swing
	GenreElectronic    // Four on floor, straight upbeats
	GenreTrap          // Half-time snare, rolling hi-hats
	GenreJazz          // Ride pattern, heavy swing
	GenreFunk          // 16th-note groove, syncopated everything
	GenreSongwriter    // Simple, sparse patterns
	GenreLatin         // Clave-based patterns
)

// String returns the display name of the genre.
func (g Genre) String() string {
	switch g {
	case GenreRock:
		return "Rock"
	case GenreHipHop:
		return "HipHop"
	case GenreRnB:
		return "R&B"
	case GenreElectronic:
		return "Electronic"
	case GenreTrap:
		return "Trap"
	case GenreJazz:
		return "Jazz"
	case GenreFunk:
		return "Funk"
	case GenreSongwriter:
		return "Songwriter"
	case GenreLatin:
		return "Latin"
	default:
		return "Unknown"
	}
}

// classifyGenre maps the accumulated pattern characteristics onto a genre.
// It reports ok=false while fewer than 2x the minimum hit count has been
// seen, in which case the previous classification should be kept.
func classifyGenre(s *aggregateStats, totalHits int) (Genre, bool) {
	if totalHits < minHitsForValidGroove*2 {
		return GenreUnknown, false
	}

	// Swing character from average upbeat deviation.
	avgSwing := 0.0
	if s.swingSamples > 0 {
		avgSwing = s.accumulatedSwing / float64(s.swingSamples)
	}
	hasSwing := math.Abs(avgSwing) > 5.0       // > 5ms average deviation
	hasHeavySwing := math.Abs(avgSwing) > 15.0 // > 15ms, jazz/shuffle territory

	// Kick pattern: four-on-the-floor when every beat carries its share.
	kickTotal := s.kickBeatHits[0] + s.kickBeatHits[1] + s.kickBeatHits[2] + s.kickBeatHits[3]
	hasFourOnFloor := kickTotal > 0 &&
		s.kickBeatHits[0] > kickTotal/6 &&
		s.kickBeatHits[1] > kickTotal/6 &&
		s.kickBeatHits[2] > kickTotal/6 &&
		s.kickBeatHits[3] > kickTotal/6

	// Snare pattern: backbeat on 2 and 4, or half-time on 3.
	snareTotal := s.snareBeatHits[0] + s.snareBeatHits[1] + s.snareBeatHits[2] + s.snareBeatHits[3]
	hasBackbeat := snareTotal > 0 &&
		s.snareBeatHits[1] > snareTotal/4 &&
		s.snareBeatHits[3] > snareTotal/4
	hasHalfTimeSnare := snareTotal > 0 &&
		s.snareBeatHits[2] > snareTotal/2 &&
		s.snareBeatHits[1] < snareTotal/6 &&
		s.snareBeatHits[3] < snareTotal/6

	sixteenthDensity := float64(s.sixteenthNoteHits) / float64(totalHits)
	has16thGroove := sixteenthDensity > 0.3

	switch {
	case hasHalfTimeSnare:
		return GenreTrap, true
	case hasFourOnFloor && !hasSwing:
		return GenreElectronic, true
	case hasHeavySwing && hasBackbeat:
		if has16thGroove {
			return GenreFunk, true
		}
		return GenreJazz, true
	case hasSwing && has16thGroove:
		if sixteenthDensity > 0.4 {
			return GenreRnB, true
		}
		return GenreHipHop, true
	case hasBackbeat && !hasSwing:
		return GenreRock, true
	case !has16thGroove && totalHits < 20:
		return GenreSongwriter, true
	case has16thGroove && hasSwing:
		return GenreFunk, true
	}

	return GenreUnknown, true
}
