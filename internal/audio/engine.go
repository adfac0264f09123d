// SPDX-License-Identifier: MIT
/*
Package audio captures a live input signal and feeds detected transients
into the groove learner:
  - Lock-free capture via PortAudio with pre-allocated buffers
  - Spectral onset detection on the mono-mixed signal
  - A sample-accurate musical clock for PPQ positions
  - Optional WAV recording of the material being learned from

The capture callback runs on a locked OS thread and performs no allocations.
*/
package audio

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"groove/internal/analysis"
	"groove/internal/config"
	"groove/internal/groove"
	"groove/internal/log"
)

// Engine owns the capture stream and drives the learner from its callback.
type Engine struct {
	cfg      *config.Config
	learner  *groove.Learner
	detector *analysis.Detector
	clock    *Clock

	inputBuffer  []int32
	monoInput    []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	isRecording int32 // atomic flag shared with the recording controls
	wavFile     closableFile
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer
}

// NewEngine resolves the input device and pre-allocates all processing
// buffers. PortAudio must be initialized first.
func NewEngine(cfg *config.Config, learner *groove.Learner) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	// Analysis frames span two capture blocks for better low-end resolution.
	detector, err := analysis.NewDetector(cfg.Audio.FramesPerBuffer*2, cfg.Audio.SampleRate, analysis.Hann)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		learner:     learner,
		detector:    detector,
		clock:       NewClock(cfg.Audio.SampleRate, cfg.Groove.BPM),
		inputBuffer: make([]int32, cfg.Audio.FramesPerBuffer*cfg.Audio.Channels),
		monoInput:   make([]int32, cfg.Audio.FramesPerBuffer),
		inputDevice: inputDevice,
	}

	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	log.Infof("audio: capture on %q (%.0f Hz, %d frames, %d ch)",
		inputDevice.Name, cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer, cfg.Audio.Channels)

	return e, nil
}

// StartInputStream opens and starts the capture stream.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.cfg.Audio.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.cfg.Audio.FramesPerBuffer,
		SampleRate:      e.cfg.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return err
	}
	return nil
}

// StopInputStream stops and closes the capture stream.
func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}
		if err := e.inputStream.Close(); err != nil {
			return err
		}
		e.inputStream = nil
	}
	return nil
}

// processInputStream is the capture callback. Hot path: pre-allocated
// buffers only, no dynamic allocation.
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	frames := len(in) / e.cfg.Audio.Channels

	mono := e.inputBuffer[:frames]
	if e.cfg.Audio.Channels > 1 {
		mixToMono(e.inputBuffer, e.monoInput, e.cfg.Audio.Channels)
		mono = e.monoInput[:frames]
	}

	onsets := e.detector.Process(mono)
	e.learner.ProcessOnsets(onsets, e.clock.PPQ(), frames)
	e.clock.Advance(frames)

	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		for i, sample := range e.inputBuffer {
			e.sampleBuf.Data[i] = int(sample)
		}
		e.sampleBuf.Data = e.sampleBuf.Data[:len(e.inputBuffer)]

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			log.Errorf("audio: WAV write failed: %v", err)
		}
	}
}

// mixToMono averages interleaved channels into dst, which must hold
// len(src)/channels samples.
func mixToMono(src, dst []int32, channels int) {
	frames := len(src) / channels
	for i := 0; i < frames; i++ {
		var sum int64
		for c := 0; c < channels; c++ {
			sum += int64(src[i*channels+c])
		}
		dst[i] = int32(sum / int64(channels))
	}
}

// Clock exposes the engine's musical clock, e.g. for tempo changes.
func (e *Engine) Clock() *Clock { return e.clock }

// Detector exposes the onset detector, e.g. for gate adjustments.
func (e *Engine) Detector() *analysis.Detector { return e.detector }
