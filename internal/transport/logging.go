package transport

import (
	"groove/internal/groove"
	"groove/internal/log"
)

// LoggingTransport writes a one-line snapshot summary to the debug log.
// Useful when no external UI is connected.
type LoggingTransport struct{}

var _ Transport = (*LoggingTransport)(nil)

// NewLoggingTransport returns a transport that logs instead of sending.
func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

// Send logs the snapshot at debug level; other payloads are ignored.
func (lt *LoggingTransport) Send(data any) error {
	if s, ok := data.(groove.Snapshot); ok {
		log.Debugf("groove: state=%s progress=%.0f%% bars=%d confidence=%.2f genre=%s",
			s.State, s.Progress*100, s.BarsLearned, s.Confidence, s.Genre)
	}
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error { return nil }
