package groove

import (
	"math"
	"testing"
)

func driftFromIOIs(intervals []float64, bpm float64) TempoDrift {
	s := newAggregateStats()
	for _, ioi := range intervals {
		s.iois.Push(ioi)
	}
	scratch := make([]float64, maxIOIHistory)
	return updateTempoDrift(s, bpm, scratch)
}

func repeatIOI(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestSteadyIntervalsAreStable(t *testing.T) {
	// 32 identical sixteenth-note intervals at 120 BPM.
	d := driftFromIOIs(repeatIOI(0.25, 32), 120)

	if d.Stability != 1.0 {
		t.Errorf("Stability = %v, want 1.0 for identical intervals", d.Stability)
	}
	if d.IsRushing || d.IsDragging {
		t.Errorf("flags = rushing:%v dragging:%v, want neither", d.IsRushing, d.IsDragging)
	}
	if math.Abs(d.DriftPercentage) > 1e-9 {
		t.Errorf("DriftPercentage = %v, want 0", d.DriftPercentage)
	}
	// Mean IOI of 0.25 beats at 120 BPM is the sixteenth-note rate.
	if math.Abs(d.AvgTempo-480.0) > 1e-6 {
		t.Errorf("AvgTempo = %v, want 480", d.AvgTempo)
	}
}

func TestShrinkingIntervalsFlagRushing(t *testing.T) {
	intervals := append(repeatIOI(0.25, 16), repeatIOI(0.225, 16)...)
	d := driftFromIOIs(intervals, 120)

	if !d.IsRushing {
		t.Error("IsRushing = false, want true for 10% shorter second half")
	}
	if d.IsDragging {
		t.Error("IsDragging = true, want false")
	}
	if math.Abs(d.DriftPercentage-10.0) > 1e-6 {
		t.Errorf("DriftPercentage = %v, want 10", d.DriftPercentage)
	}
	if d.Stability <= 0 || d.Stability >= 1 {
		t.Errorf("Stability = %v, want strictly between 0 and 1", d.Stability)
	}
}

func TestGrowingIntervalsFlagDragging(t *testing.T) {
	intervals := append(repeatIOI(0.25, 16), repeatIOI(0.28, 16)...)
	d := driftFromIOIs(intervals, 120)

	if !d.IsDragging {
		t.Error("IsDragging = false, want true for 12% longer second half")
	}
	if d.DriftPercentage >= 0 {
		t.Errorf("DriftPercentage = %v, want negative for slowing down", d.DriftPercentage)
	}
}

func TestFewIntervalsStayNeutral(t *testing.T) {
	d := driftFromIOIs(repeatIOI(0.25, 7), 120)

	if d != neutralDrift() {
		t.Errorf("drift = %+v, want neutral below 8 intervals", d)
	}
}

func TestShortWindowSkipsTrendDetection(t *testing.T) {
	// 8 intervals: enough for stability, not for the half-window trend.
	intervals := []float64{0.25, 0.26, 0.24, 0.25, 0.25, 0.26, 0.24, 0.25}
	d := driftFromIOIs(intervals, 120)

	if d.IsRushing || d.IsDragging || d.DriftPercentage != 0 {
		t.Errorf("drift = %+v, want no trend below 16 intervals", d)
	}
	if d.Stability <= 0.5 {
		t.Errorf("Stability = %v, want high for near-identical intervals", d.Stability)
	}
}
