package groove

// Snapshot is a one-shot, read-only view of the learner assembled entirely
// from the lock-free accessors. Transports serialize it for external UIs.
type Snapshot struct {
	State       string     `json:"state"`
	Progress    float64    `json:"progress"`
	Confidence  float64    `json:"confidence"`
	BarsLearned int        `json:"barsLearned"`
	Ready       bool       `json:"ready"`
	Genre       string     `json:"genre"`
	Drift       TempoDrift `json:"drift"`
	Template    Template   `json:"template"`
}

// Snapshot assembles the current view without taking the learner's lock.
func (l *Learner) Snapshot() Snapshot {
	return Snapshot{
		State:       l.State().String(),
		Progress:    l.LearningProgress(),
		Confidence:  l.Confidence(),
		BarsLearned: l.BarsLearned(),
		Ready:       l.IsGrooveReady(),
		Genre:       l.DetectedGenre().String(),
		Drift:       l.TempoDrift(),
		Template:    l.GrooveTemplate(),
	}
}
