// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"
)

const (
	testSampleRate = 44100.0
	testFrameSize  = 1024
	testBlockSize  = 512
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(testFrameSize, testSampleRate, Hann)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

// sineBlock synthesizes one capture block of a sine at the given amplitude,
// advancing phase across calls.
func sineBlock(freq, amp float64, phase *float64) []int32 {
	block := make([]int32, testBlockSize)
	step := 2 * math.Pi * freq / testSampleRate
	for i := range block {
		block[i] = int32(amp * float64(math.MaxInt32) * math.Sin(*phase))
		*phase += step
	}
	return block
}

func silentBlock() []int32 {
	return make([]int32, testBlockSize)
}

func TestSilenceProducesNoOnsets(t *testing.T) {
	d := newTestDetector(t)

	for i := 0; i < 20; i++ {
		if onsets := d.Process(silentBlock()); len(onsets) > 0 {
			t.Fatalf("block %d: %d onsets in silence", i, len(onsets))
		}
	}
}

func TestBurstAfterSilenceFiresOnce(t *testing.T) {
	d := newTestDetector(t)

	for i := 0; i < 4; i++ {
		d.Process(silentBlock())
	}

	var phase float64
	total := 0
	for i := 0; i < 4; i++ {
		onsets := d.Process(sineBlock(200, 0.5, &phase))
		if i == 0 {
			if len(onsets) != 1 {
				t.Fatalf("first burst block: %d onsets, want 1", len(onsets))
			}
			// One hop of latency at most.
			hopSeconds := float64(d.HopSize()) / testSampleRate
			if onsets[0] < 0 || onsets[0] > hopSeconds {
				t.Errorf("onset time = %v, want within one hop (%v)", onsets[0], hopSeconds)
			}
		}
		total += len(onsets)
	}

	if total != 1 {
		t.Errorf("burst produced %d onsets, want exactly 1", total)
	}
}

func TestSeparatedBurstsBothDetected(t *testing.T) {
	d := newTestDetector(t)

	var phase float64
	first := 0
	for i := 0; i < 6; i++ {
		first += len(d.Process(sineBlock(200, 0.5, &phase)))
	}
	if first != 1 {
		t.Fatalf("first burst: %d onsets, want 1", first)
	}

	// The gated gap clears the spectral baseline.
	for i := 0; i < 8; i++ {
		d.Process(silentBlock())
	}

	phase = 0
	second := 0
	for i := 0; i < 6; i++ {
		second += len(d.Process(sineBlock(200, 0.5, &phase)))
	}
	if second != 1 {
		t.Errorf("second burst: %d onsets, want 1", second)
	}
}

func TestGateSuppressesQuietSignal(t *testing.T) {
	d := newTestDetector(t)
	d.SetGateThreshold(0.9)

	if got := d.GateThreshold(); math.Abs(got-0.9) > 1e-6 {
		t.Fatalf("GateThreshold = %v, want 0.9", got)
	}

	var phase float64
	for i := 0; i < 8; i++ {
		if onsets := d.Process(sineBlock(200, 0.5, &phase)); len(onsets) > 0 {
			t.Fatalf("block %d: onset fired below the gate", i)
		}
	}
}

func TestResetRestartsDetection(t *testing.T) {
	d := newTestDetector(t)

	var phase float64
	for i := 0; i < 6; i++ {
		d.Process(sineBlock(200, 0.5, &phase))
	}

	d.Reset()

	phase = 0
	onsets := d.Process(sineBlock(200, 0.5, &phase))
	if len(onsets) != 1 {
		t.Errorf("onsets after Reset = %v, want exactly one", onsets)
	}
}

func TestFrameSizeRoundsToPowerOfTwo(t *testing.T) {
	d, err := NewDetector(1000, testSampleRate, Hann)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	if d.FrameSize() != 1024 {
		t.Errorf("FrameSize = %d, want 1024", d.FrameSize())
	}
	if d.HopSize() != 512 {
		t.Errorf("HopSize = %d, want 512", d.HopSize())
	}
	if d.SampleRate() != testSampleRate {
		t.Errorf("SampleRate = %v, want %v", d.SampleRate(), testSampleRate)
	}
}

func TestNewDetectorValidation(t *testing.T) {
	if _, err := NewDetector(0, testSampleRate, Hann); err == nil {
		t.Error("NewDetector accepted frame size 0")
	}
	if _, err := NewDetector(testFrameSize, -1, Hann); err == nil {
		t.Error("NewDetector accepted negative sample rate")
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name     string
		expected WindowFunc
		wantErr  bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackman", Blackman, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"bartletthann", BartlettHann, false},
		{"lanczos", Lanczos, false},
		{"nuttall", Nuttall, false},
		{"triangle", Hann, true},
	}

	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindowFunc(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseWindowFunc(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func BenchmarkDetectorProcess(b *testing.B) {
	d, err := NewDetector(testFrameSize, testSampleRate, Hann)
	if err != nil {
		b.Fatalf("NewDetector: %v", err)
	}

	var phase float64
	block := sineBlock(200, 0.5, &phase)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Process(block)
	}
}
