package audio

// Clock derives the capture stream's musical position from its sample count.
// It is owned by the audio callback; no locking.
type Clock struct {
	sampleRate float64
	bpm        float64
	basePPQ    float64 // position when the tempo last changed
	samples    int64   // samples advanced since then
}

// NewClock returns a clock at position zero.
func NewClock(sampleRate, bpm float64) *Clock {
	return &Clock{sampleRate: sampleRate, bpm: bpm}
}

// PPQ returns the current position in quarter notes.
func (c *Clock) PPQ() float64 {
	return c.basePPQ + float64(c.samples)/c.sampleRate*(c.bpm/60.0)
}

// Seconds returns the elapsed stream time since the last Reset.
func (c *Clock) Seconds() float64 {
	return (c.PPQ() / c.bpm) * 60.0
}

// Advance moves the clock forward by numSamples.
func (c *Clock) Advance(numSamples int) {
	c.samples += int64(numSamples)
}

// SetBPM changes the tempo without moving the current position.
func (c *Clock) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.basePPQ = c.PPQ()
	c.samples = 0
	c.bpm = bpm
}

// BPM returns the current tempo.
func (c *Clock) BPM() float64 { return c.bpm }

// Reset returns the clock to position zero.
func (c *Clock) Reset() {
	c.basePPQ = 0
	c.samples = 0
}
