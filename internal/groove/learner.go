/*
Package groove implements the groove-learning engine: it observes rhythmic
transients (audio onsets or MIDI notes) across bars, accumulates their
timing/velocity/position statistics, and condenses them into a compact
rhythmic template (swing, micro-timing, accents, density, syncopation).

Thread safety follows a strict two-actor contract:
  - The audio thread calls Prepare, SetBPM, SetTimeSignature, ProcessOnsets,
    and ProcessMidiOnsets. Aggregate mutation happens inside a short, bounded
    critical section; per-block processing never allocates (event storage is
    pre-reserved at Prepare/StartLearning).
  - The UI thread reads state, progress, confidence, genre, drift, and the
    template at any time without blocking: scalars are atomics, and the
    template/drift are published as immutable snapshots behind atomic
    pointers. A snapshot is fully built before it becomes visible and is
    never mutated afterwards, so a reader always sees one complete value.
*/
package groove

import (
	"math"
	"sync"
	"sync/atomic"

	"groove/internal/log"
	"groove/pkg/bitint"
)

// State is the learner's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateLearning
	StateLocked
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLearning:
		return "Learning"
	case StateLocked:
		return "Locked"
	default:
		return "Idle"
	}
}

// Minimum data thresholds before a learned groove counts as valid.
const (
	minHitsForValidGroove = 8
	minBarsForConfidence  = 2
)

// defaultTransientReserve floors the pre-allocated event storage: 16
// sixteenths * autoLockBars * 4 hits per position, whichever is larger.
const defaultTransientReserve = 256

// Learner accumulates transients over multiple bars and learns a groove
// template, auto-locking once enough bars have been analyzed. The zero value
// is not usable; construct with NewLearner.
type Learner struct {
	// Scalar state shared lock-free with the UI thread.
	state           atomic.Int32
	barsAnalyzed    atomic.Int32
	totalHits       atomic.Int32
	audioHits       atomic.Int32
	midiHits        atomic.Int32
	autoLockBars    atomic.Int32
	autoLockEnabled atomic.Bool
	multiSource     atomic.Bool
	genre           atomic.Int32
	patternConf     atomic.Uint64 // float64 bits, refreshed at bar boundaries

	// Published analysis results. Immutable once stored; readers copy.
	published atomic.Pointer[Template]
	drift     atomic.Pointer[TempoDrift]

	// mu guards everything below. The critical sections are short and
	// bounded: O(onsets per block) for ingestion, O(bins) for a rebuild.
	mu sync.Mutex

	sampleRate float64
	bpm        float64
	timeSigNum int
	timeSigDen int
	grid       barGrid

	lastBarNumber int
	events        []TransientEvent
	stats         *aggregateStats
	driftScratch  []float64
}

// NewLearner returns an idle learner configured for 120 BPM, 4/4, with
// auto-lock after 4 bars.
func NewLearner() *Learner {
	l := &Learner{
		sampleRate:    44100,
		bpm:           120,
		timeSigNum:    4,
		timeSigDen:    4,
		grid:          barGrid{barLengthQuarters: 4},
		lastBarNumber: -1,
		stats:         newAggregateStats(),
		driftScratch:  make([]float64, maxIOIHistory),
	}
	l.autoLockBars.Store(4)
	l.autoLockEnabled.Store(true)
	l.storePatternConf(0.5)
	l.publishTemplate(defaultTemplate())
	l.publishDrift(neutralDrift())
	l.reserveEventsLocked()
	return l
}

// Prepare configures the learner for processing. An out-of-range BPM leaves
// the learner completely unchanged and returns an error.
func (l *Learner) Prepare(sampleRate, bpm float64) error {
	if err := validateBPM(bpm); err != nil {
		log.Warnf("groove: Prepare rejected: %v", err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sampleRate = sampleRate
	l.bpm = bpm
	l.reserveEventsLocked()
	return nil
}

// SetBPM updates the tempo used for beat tracking. Out-of-range values are
// rejected without effect.
func (l *Learner) SetBPM(bpm float64) error {
	if err := validateBPM(bpm); err != nil {
		log.Warnf("groove: SetBPM rejected: %v", err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.bpm = bpm
	return nil
}

// SetTimeSignature updates bar tracking. The numerator must be positive and
// the denominator a power of two no larger than 16; invalid signatures are
// rejected without effect.
func (l *Learner) SetTimeSignature(numerator, denominator int) error {
	if numerator <= 0 {
		log.Warnf("groove: SetTimeSignature rejected: numerator %d must be positive", numerator)
		return errInvalidTimeSignature
	}
	if !bitint.IsPowerOfTwo(denominator) || denominator > 16 {
		log.Warnf("groove: SetTimeSignature rejected: denominator %d must be 1, 2, 4, 8, or 16", denominator)
		return errInvalidTimeSignature
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeSigNum = numerator
	l.timeSigDen = denominator
	// Bar length in quarter notes: 4/4 = 4, 3/4 = 3, 6/8 = 3.
	l.grid = barGrid{barLengthQuarters: 4.0 * float64(numerator) / float64(denominator)}
	return nil
}

// StartLearning begins a learning session. Entering from Idle or Locked
// clears all previous aggregates; calling while already Learning keeps the
// accumulated data intact.
func (l *Learner) StartLearning() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if State(l.state.Load()) != StateLearning {
		l.reserveEventsLocked()
		l.lastBarNumber = -1
		l.stats.reset()

		l.barsAnalyzed.Store(0)
		l.totalHits.Store(0)
		l.audioHits.Store(0)
		l.midiHits.Store(0)
		l.storePatternConf(0.5)

		l.publishTemplate(defaultTemplate())
		l.publishDrift(neutralDrift())
	}
	l.state.Store(int32(StateLearning))
	log.Infof("groove: learning started (auto-lock after %d bars)", l.autoLockBars.Load())
}

// LockGroove finalizes the current groove. It only takes effect while
// Learning with enough accumulated data; otherwise it is a no-op.
func (l *Learner) LockGroove() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if State(l.state.Load()) == StateLearning && l.IsGrooveReady() {
		l.rebuildTemplateLocked()
		l.state.Store(int32(StateLocked))
		log.Infof("groove: locked after %d bars, %d hits", l.barsAnalyzed.Load(), l.totalHits.Load())
	}
}

// Reset unconditionally clears all learned state and returns to Idle.
func (l *Learner) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Store(int32(StateIdle))
	l.events = l.events[:0]
	l.lastBarNumber = -1
	l.stats.reset()

	l.barsAnalyzed.Store(0)
	l.totalHits.Store(0)
	l.audioHits.Store(0)
	l.midiHits.Store(0)
	l.genre.Store(int32(GenreUnknown))
	l.storePatternConf(0.5)

	l.publishTemplate(defaultTemplate())
	l.publishDrift(neutralDrift())
}

// ProcessOnsets ingests audio onsets detected in the current block. Onset
// times are in seconds relative to the block start; ppqPosition is the
// playhead position at the block start. Ignored unless Learning.
func (l *Learner) ProcessOnsets(onsets []float64, ppqPosition float64, numSamples int) {
	_ = numSamples

	if l.State() != StateLearning {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the lock: LockGroove/Reset may have raced the first.
	if State(l.state.Load()) != StateLearning {
		return
	}

	secondsPerBeat := 60.0 / l.bpm
	ppqPerSecond := 1.0 / secondsPerBeat

	// Bar bookkeeping runs even when the block carried no onsets, so bar
	// transitions and auto-lock are never missed on silent blocks.
	if l.trackBarLocked(ppqPosition) {
		return
	}

	for _, onsetSeconds := range onsets {
		l.ingestLocked(ppqPosition+onsetSeconds*ppqPerSecond, SourceAudio, 100, -1)
		l.audioHits.Add(1)
	}
}

// ProcessMidiOnsets ingests MIDI note onsets, each carrying its own PPQ
// position, velocity, and note number. Ignored unless Learning.
func (l *Learner) ProcessMidiOnsets(onsets []MidiOnset, ppqPosition float64) {
	if l.State() != StateLearning {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if State(l.state.Load()) != StateLearning {
		return
	}

	if l.trackBarLocked(ppqPosition) {
		return
	}

	for _, onset := range onsets {
		l.ingestLocked(onset.PPQ, SourceMidi, onset.Velocity, onset.Note)
		l.midiHits.Add(1)
	}
}

// trackBarLocked advances bar bookkeeping for the block starting at ppq and
// reports whether the learner auto-locked. Every 2 bars the template, genre,
// and tempo drift are refreshed; once the auto-lock target is reached the
// groove locks when ready, or unconditionally after 4x the target bars so
// learning can never stall indefinitely.
func (l *Learner) trackBarLocked(ppq float64) bool {
	currentBar := l.grid.barNumber(ppq)
	if currentBar == l.lastBarNumber {
		return false
	}
	defer func() { l.lastBarNumber = currentBar }()

	if l.lastBarNumber < 0 {
		return false
	}

	bars := int(l.barsAnalyzed.Add(1))
	l.storePatternConf(patternConsistency(l.stats))

	if bars%2 == 0 {
		l.rebuildTemplateLocked()
		l.refreshAnalysisLocked()
	}

	lockBars := int(l.autoLockBars.Load())
	if !l.autoLockEnabled.Load() || bars < lockBars {
		return false
	}

	if l.IsGrooveReady() {
		l.rebuildTemplateLocked()
		l.refreshAnalysisLocked()
		l.state.Store(int32(StateLocked))
		log.Infof("groove: auto-locked after %d bars, %d hits", bars, l.totalHits.Load())
		return true
	}
	if bars >= lockBars*4 {
		// Bounded-wait fallback: lock with whatever template exists rather
		// than staying in Learning forever.
		l.state.Store(int32(StateLocked))
		log.Warnf("groove: no usable transients after %d bars, locking with default groove", bars)
		return true
	}
	return false
}

// ingestLocked normalizes one onset and folds it into the aggregates.
func (l *Learner) ingestLocked(ppq float64, source Source, velocity, midiNote int) {
	ev := newTransientEvent(l.grid, ppq, source, velocity, midiNote)
	l.events = append(l.events, ev)

	if l.stats.observe(ev, l.grid.ppqInBar(ppq), 60.0/l.bpm) {
		l.totalHits.Add(1)
	}
}

// rebuildTemplateLocked derives and publishes a fresh template snapshot.
// Below the minimum hit count the previously published template stands.
func (l *Learner) rebuildTemplateLocked() {
	hits := int(l.totalHits.Load())
	if hits < minHitsForValidGroove {
		return
	}
	t := buildTemplate(l.stats, l.bpm, int(l.barsAnalyzed.Load()), l.timeSigNum, hits)
	l.publishTemplate(t)
}

// refreshAnalysisLocked updates genre classification and tempo drift.
func (l *Learner) refreshAnalysisLocked() {
	if g, ok := classifyGenre(l.stats, int(l.totalHits.Load())); ok {
		l.genre.Store(int32(g))
	}
	l.publishDrift(updateTempoDrift(l.stats, l.bpm, l.driftScratch))
}

// reserveEventsLocked pre-allocates event storage so learning-time appends
// stay within capacity and the audio thread never allocates.
func (l *Learner) reserveEventsLocked() {
	reserve := 16 * int(l.autoLockBars.Load()) * 4
	if reserve < defaultTransientReserve {
		reserve = defaultTransientReserve
	}
	if cap(l.events) < reserve {
		l.events = make([]TransientEvent, 0, reserve)
	} else {
		l.events = l.events[:0]
	}
}

// --- Lock-free accessors (UI thread) ---

// State returns the current lifecycle state.
func (l *Learner) State() State {
	return State(l.state.Load())
}

// GrooveTemplate returns a value snapshot of the most recently published
// template. Lock-free; safe from any goroutine.
func (l *Learner) GrooveTemplate() Template {
	return *l.published.Load()
}

// LearningProgress reports progress toward the auto-lock target: 1 when
// Locked, 0 when Idle, otherwise barsAnalyzed/autoLockBars capped at 1.
func (l *Learner) LearningProgress() float64 {
	switch l.State() {
	case StateLocked:
		return 1
	case StateIdle:
		return 0
	}

	lockBars := l.autoLockBars.Load()
	if lockBars <= 0 {
		return 1
	}
	return math.Min(1, float64(l.barsAnalyzed.Load())/float64(lockBars))
}

// Confidence reports how trustworthy the learned groove is, 0..1. Always 0
// below the minimum hit count.
func (l *Learner) Confidence() float64 {
	return confidenceScore(
		int(l.barsAnalyzed.Load()),
		int(l.totalHits.Load()),
		int(l.audioHits.Load()),
		int(l.midiHits.Load()),
		l.loadPatternConf(),
		l.drift.Load().Stability,
	)
}

// IsGrooveReady reports whether enough data has accumulated for a valid
// groove: at least 8 hits across at least 2 bars.
func (l *Learner) IsGrooveReady() bool {
	return l.totalHits.Load() >= minHitsForValidGroove &&
		l.barsAnalyzed.Load() >= minBarsForConfidence
}

// BarsLearned returns the number of complete bars analyzed.
func (l *Learner) BarsLearned() int {
	return int(l.barsAnalyzed.Load())
}

// DetectedGenre returns the current heuristic style classification.
func (l *Learner) DetectedGenre() Genre {
	return Genre(l.genre.Load())
}

// TempoDrift returns the most recently published drift metrics.
func (l *Learner) TempoDrift() TempoDrift {
	return *l.drift.Load()
}

// SetAutoLockBars sets the bar target for auto-locking.
func (l *Learner) SetAutoLockBars(bars int) {
	l.autoLockBars.Store(int32(bars))
}

// AutoLockBars returns the auto-lock bar target.
func (l *Learner) AutoLockBars() int {
	return int(l.autoLockBars.Load())
}

// SetAutoLockEnabled toggles auto-locking at the bar target.
func (l *Learner) SetAutoLockEnabled(enabled bool) {
	l.autoLockEnabled.Store(enabled)
}

// IsAutoLockEnabled reports whether auto-locking is active.
func (l *Learner) IsAutoLockEnabled() bool {
	return l.autoLockEnabled.Load()
}

// SetMultiSourceEnabled toggles combined MIDI + audio analysis.
func (l *Learner) SetMultiSourceEnabled(enabled bool) {
	l.multiSource.Store(enabled)
}

// IsMultiSourceEnabled reports whether multi-source mode is on.
func (l *Learner) IsMultiSourceEnabled() bool {
	return l.multiSource.Load()
}

// --- internal helpers ---

func (l *Learner) publishTemplate(t Template) {
	l.published.Store(&t)
}

func (l *Learner) publishDrift(d TempoDrift) {
	l.drift.Store(&d)
}

func (l *Learner) storePatternConf(v float64) {
	l.patternConf.Store(math.Float64bits(v))
}

func (l *Learner) loadPatternConf() float64 {
	return math.Float64frombits(l.patternConf.Load())
}
