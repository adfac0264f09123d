package groove

import (
	"errors"
	"fmt"
)

// Validation failures leave the learner completely unchanged; callers that
// ignore the returned error still get well-defined no-op behavior.
var (
	ErrInvalidBPM           = errors.New("bpm outside [20, 300]")
	errInvalidTimeSignature = errors.New("invalid time signature")
)

const (
	minBPM = 20.0
	maxBPM = 300.0
)

func validateBPM(bpm float64) error {
	if bpm < minBPM || bpm > maxBPM {
		return fmt.Errorf("%w: %.2f", ErrInvalidBPM, bpm)
	}
	return nil
}
