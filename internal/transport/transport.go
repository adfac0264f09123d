/*
Package transport publishes learner snapshots to external consumers over
WebSocket and UDP. A Publisher polls the lock-free snapshot accessors on a
fixed interval and fans the result out to every configured transport; slow
or absent consumers never affect the audio path.
*/
package transport

import (
	"time"

	"groove/internal/groove"
	"groove/internal/log"
)

// Transport sends one snapshot to an external consumer. Implementations must
// be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// SnapshotSource yields the current learner view. *groove.Learner satisfies
// this; tests substitute fixtures.
type SnapshotSource interface {
	Snapshot() groove.Snapshot
}

// Publisher periodically reads a snapshot and sends it to all targets.
type Publisher struct {
	source   SnapshotSource
	targets  []Transport
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewPublisher returns an unstarted publisher. Intervals below 10ms are
// raised to 10ms.
func NewPublisher(source SnapshotSource, interval time.Duration, targets ...Transport) *Publisher {
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return &Publisher{
		source:   source,
		targets:  targets,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the publishing loop in its own goroutine.
func (p *Publisher) Start() {
	go p.run()
}

func (p *Publisher) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			snapshot := p.source.Snapshot()
			for _, t := range p.targets {
				if err := t.Send(snapshot); err != nil {
					log.Warnf("transport: send failed: %v", err)
				}
			}
		}
	}
}

// Stop halts publishing and closes every target transport.
func (p *Publisher) Stop() {
	close(p.stop)
	<-p.done

	for _, t := range p.targets {
		if err := t.Close(); err != nil {
			log.Warnf("transport: close failed: %v", err)
		}
	}
}
