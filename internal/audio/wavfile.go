package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"groove/internal/analysis"
	"groove/internal/config"
	"groove/internal/groove"
	"groove/internal/log"
)

// LearnFromWAV feeds a WAV file through onset detection and the learner as
// if it had arrived live, using a software clock at the configured tempo.
// The groove is locked at the end of the file if enough data accumulated.
func LearnFromWAV(path string, learner *groove.Learner, cfg *config.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("not a valid WAV file: %s", path)
	}

	sampleRate := float64(dec.SampleRate)
	channels := int(dec.NumChans)
	if channels < 1 {
		return fmt.Errorf("no audio channels in %s", path)
	}
	// Decoded samples arrive at the source bit depth; shift up to int32
	// full scale for the detector.
	shift := uint(32 - dec.BitDepth)

	detector, err := analysis.NewDetector(cfg.Audio.FramesPerBuffer*2, sampleRate, analysis.Hann)
	if err != nil {
		return err
	}
	clock := NewClock(sampleRate, cfg.Groove.BPM)

	if err := learner.Prepare(sampleRate, cfg.Groove.BPM); err != nil {
		return err
	}

	blockFrames := cfg.Audio.FramesPerBuffer
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
		Data:   make([]int, blockFrames*channels),
	}
	mono := make([]int32, blockFrames)

	log.Infof("audio: analyzing %s (%.0f Hz, %d ch, %d-bit) at %.1f BPM",
		path, sampleRate, channels, dec.BitDepth, cfg.Groove.BPM)

	learner.StartLearning()

	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		if n == 0 {
			break
		}

		frames := n / channels
		for i := 0; i < frames; i++ {
			var sum int64
			for c := 0; c < channels; c++ {
				sum += int64(buf.Data[i*channels+c]) << shift
			}
			mono[i] = int32(sum / int64(channels))
		}

		onsets := detector.Process(mono[:frames])
		learner.ProcessOnsets(onsets, clock.PPQ(), frames)
		clock.Advance(frames)

		if learner.State() == groove.StateLocked {
			break
		}
	}

	if learner.State() == groove.StateLearning {
		learner.LockGroove()
	}
	return nil
}
