package audio

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type closableFile interface {
	io.WriteSeeker
	Close() error
}

// StartRecording begins writing the captured input to a 32-bit WAV file. An
// empty filename generates a timestamped one.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	if filename == "" {
		filename = fmt.Sprintf("groove_%s.wav", time.Now().Format("20060102_150405"))
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.wavFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.cfg.Audio.SampleRate),
		32, e.cfg.Audio.Channels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.cfg.Audio.Channels,
			SampleRate:  int(e.cfg.Audio.SampleRate),
		},
		Data: make([]int, e.cfg.Audio.FramesPerBuffer*e.cfg.Audio.Channels),
	}

	atomic.StoreInt32(&e.isRecording, 1)
	return nil
}

// StopRecording finalizes the WAV file. Safe to call when not recording.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}
	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}
	if e.wavFile != nil {
		if err := e.wavFile.Close(); err != nil {
			return err
		}
		e.wavFile = nil
	}
	return nil
}

// Close stops any active recording and the capture stream.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}
	return e.StopInputStream()
}
