// SPDX-License-Identifier: MIT
/*
Package analysis implements real-time spectral onset detection.

The detector slices the incoming capture stream into overlapping FFT frames,
computes the positive spectral flux between consecutive frames, and reports
an onset whenever the flux rises clearly above its recent average. All
buffers are pre-allocated at construction; Process never allocates beyond
growing its small result slice once.
*/
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"groove/internal/log"
	"groove/pkg/bitint"
	"groove/pkg/ringbuf"
)

const (
	// refractorySeconds suppresses re-triggering on the tail of a transient.
	refractorySeconds = 0.05

	// fluxHistoryLen bounds the adaptive threshold window, roughly half a
	// second of hops at 44.1 kHz with the default frame size.
	fluxHistoryLen = 32

	// thresholdRatio scales the recent average flux into the trigger level.
	thresholdRatio = 1.5

	// thresholdFloor keeps numeric noise on near-silent frames from firing.
	thresholdFloor = 1e-4
)

// Detector turns raw int32 capture blocks into onset times. It is owned by
// the audio callback and is not safe for concurrent use.
type Detector struct {
	fft        *fourier.FFT
	frameSize  int
	hopSize    int
	sampleRate float64

	window  []float64
	history []float64 // last frameSize samples, normalized to [-1, 1)
	frame   []float64 // windowed copy handed to the FFT
	coeffs  []complex128
	prevMag []float64

	flux   *ringbuf.Ring
	onsets []float64

	gateThreshold  int32
	refractoryHops int
	hopsSinceOnset int
	pending        int   // samples accumulated toward the next hop
	totalSamples   int64 // absolute sample position of the stream
}

// NewDetector builds a detector for the given frame size and sample rate.
// Frame sizes that are not a power of two are rounded up.
func NewDetector(frameSize int, sampleRate float64, windowType WindowFunc) (*Detector, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if !bitint.IsPowerOfTwo(frameSize) {
		frameSize = bitint.NextPowerOfTwo(frameSize)
	}

	hopSize := frameSize / 2
	windowCoeffs := make([]float64, frameSize)
	applyWindow(windowCoeffs, windowType)

	refractoryHops := int(refractorySeconds * sampleRate / float64(hopSize))
	if refractoryHops < 1 {
		refractoryHops = 1
	}

	// N/2 + 1 complex values for real input.
	specSize := frameSize/2 + 1

	log.Infof("analysis: onset detector ready (frame %d, hop %d, %.1f Hz)", frameSize, hopSize, sampleRate)

	return &Detector{
		fft:            fourier.NewFFT(frameSize),
		frameSize:      frameSize,
		hopSize:        hopSize,
		sampleRate:     sampleRate,
		window:         windowCoeffs,
		history:        make([]float64, frameSize),
		frame:          make([]float64, frameSize),
		coeffs:         make([]complex128, specSize),
		prevMag:        make([]float64, specSize),
		flux:           ringbuf.New(fluxHistoryLen),
		onsets:         make([]float64, 0, 8),
		gateThreshold:  math.MaxInt32 / 1000, // ~0.1% of full scale
		refractoryHops: refractoryHops,
		hopsSinceOnset: refractoryHops,
	}, nil
}

// Process ingests one capture block and returns the onset times detected in
// it, in seconds relative to the block start. The returned slice is reused
// on the next call.
func (d *Detector) Process(in []int32) []float64 {
	d.onsets = d.onsets[:0]

	// Branchless block maximum. Silent blocks skip all spectral work; the
	// previous spectrum is cleared so the next audible frame registers as a
	// full energy rise.
	var maxAmplitude int32
	for i := range in {
		sample := in[i]
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	if maxAmplitude <= d.gateThreshold {
		d.totalSamples += int64(len(in))
		d.pending = 0
		for i := range d.prevMag {
			d.prevMag[i] = 0
		}
		return d.onsets
	}

	blockStart := d.totalSamples
	const normFactor = 1.0 / float64(0x80000000)

	offset := 0
	for offset < len(in) {
		n := d.hopSize - d.pending
		if n > len(in)-offset {
			n = len(in) - offset
		}

		// Slide the history window and append the new samples.
		copy(d.history, d.history[n:])
		base := d.frameSize - n
		for j := 0; j < n; j++ {
			d.history[base+j] = float64(in[offset+j]) * normFactor
		}

		d.pending += n
		offset += n
		d.totalSamples += int64(n)

		if d.pending < d.hopSize {
			break
		}
		d.pending = 0

		if t, ok := d.analyzeFrame(blockStart); ok {
			d.onsets = append(d.onsets, t)
		}
	}
	return d.onsets
}

// analyzeFrame runs one windowed FFT over the history buffer and applies the
// adaptive flux threshold. Reports the onset time relative to blockStart.
func (d *Detector) analyzeFrame(blockStart int64) (float64, bool) {
	for i := range d.frame {
		d.frame[i] = d.history[i] * d.window[i]
	}
	d.fft.Coefficients(d.coeffs, d.frame)

	// Positive spectral flux: only bins gaining energy count.
	fluxNow := 0.0
	for i, c := range d.coeffs {
		m := cmplx.Abs(c)
		if rise := m - d.prevMag[i]; rise > 0 {
			fluxNow += rise
		}
		d.prevMag[i] = m
	}

	d.hopsSinceOnset++

	threshold := thresholdFloor
	if n := d.flux.Len(); n > 0 {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += d.flux.At(i)
		}
		threshold += sum / float64(n) * thresholdRatio
	}
	d.flux.Push(fluxNow)

	if fluxNow <= threshold || d.hopsSinceOnset < d.refractoryHops {
		return 0, false
	}
	d.hopsSinceOnset = 0

	// The energy rise sits in the newest hop. Report the frame's trailing
	// edge: latency stays below one hop and never goes negative, so the
	// onset lands on the correct side of its grid position.
	rel := float64(d.totalSamples-blockStart) / d.sampleRate
	if rel < 0 {
		rel = 0
	}
	return rel, true
}

// SetGateThreshold adjusts the silence gate, 0.0 = always open, 1.0 = always
// closed. Values outside [0, 1] are clamped.
func (d *Detector) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	d.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GateThreshold returns the silence gate level as a 0..1 fraction.
func (d *Detector) GateThreshold() float64 {
	return float64(d.gateThreshold) / float64(math.MaxInt32)
}

// FrameSize returns the FFT frame size after power-of-two rounding.
func (d *Detector) FrameSize() int { return d.frameSize }

// HopSize returns the analysis hop in samples.
func (d *Detector) HopSize() int { return d.hopSize }

// SampleRate returns the configured sample rate.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// Reset clears all accumulated spectral state and restarts the stream clock.
func (d *Detector) Reset() {
	for i := range d.history {
		d.history[i] = 0
	}
	for i := range d.prevMag {
		d.prevMag[i] = 0
	}
	d.flux.Reset()
	d.pending = 0
	d.totalSamples = 0
	d.hopsSinceOnset = d.refractoryHops
}
