package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"groove/internal/config"
	"groove/internal/groove"
)

// writeClickTrack renders a 16-bit mono WAV with a decaying sine click on
// every beat at 120 BPM.
func writeClickTrack(t *testing.T, path string, beats int) {
	t.Helper()

	const (
		sampleRate  = 44100
		beatSamples = 22050 // 0.5s at 120 BPM
		clickLen    = 2048
	)

	data := make([]int, beats*beatSamples)
	for b := 0; b < beats; b++ {
		start := b * beatSamples
		for i := 0; i < clickLen; i++ {
			env := 1.0 - float64(i)/clickLen
			sample := 0.4 * env * math.Sin(2*math.Pi*200*float64(i)/sampleRate)
			data[start+i] = int(sample * math.MaxInt16)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   data,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestLearnFromWAVClickTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clicks.wav")
	writeClickTrack(t, path, 16) // 4 bars of 4/4

	cfg := config.NewConfig()
	learner := groove.NewLearner()

	if err := LearnFromWAV(path, learner, cfg); err != nil {
		t.Fatalf("LearnFromWAV: %v", err)
	}

	if learner.State() != groove.StateLocked {
		t.Fatalf("state = %v after file, want Locked", learner.State())
	}
	if bars := learner.BarsLearned(); bars < 2 {
		t.Errorf("BarsLearned = %d, want at least 2", bars)
	}

	tpl := learner.GrooveTemplate()
	if tpl.NoteCount < 8 {
		t.Errorf("NoteCount = %d, want at least 8 detected clicks", tpl.NoteCount)
	}
	// Clicks sit on the beats: no syncopation, 8th-note feel.
	if tpl.Syncopation != 0 {
		t.Errorf("Syncopation = %v, want 0 for a quarter-note click track", tpl.Syncopation)
	}
	if tpl.PrimaryDivision != 8 {
		t.Errorf("PrimaryDivision = %d, want 8", tpl.PrimaryDivision)
	}
	if c := learner.Confidence(); c <= 0 {
		t.Errorf("Confidence = %v, want positive", c)
	}
}

func TestLearnFromWAVMissingFile(t *testing.T) {
	cfg := config.NewConfig()
	learner := groove.NewLearner()

	if err := LearnFromWAV(filepath.Join(t.TempDir(), "nope.wav"), learner, cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLearnFromWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("definitely not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	learner := groove.NewLearner()

	if err := LearnFromWAV(path, learner, cfg); err == nil {
		t.Error("expected error for a non-WAV file")
	}
}

func TestMixToMono(t *testing.T) {
	src := []int32{100, 200, -50, 50, 0, 0}
	dst := make([]int32, 3)

	mixToMono(src, dst, 2)

	want := []int32{150, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}
