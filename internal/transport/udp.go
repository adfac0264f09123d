package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"groove/internal/log"
)

// UDPTransport sends each snapshot as one JSON datagram to a fixed target.
// Lossy by design: a missed snapshot is replaced by the next one.
type UDPTransport struct {
	conn   *net.UDPConn
	mu     sync.Mutex
	closed bool
}

var _ Transport = (*UDPTransport)(nil)

// NewUDPTransport dials the target, e.g. "127.0.0.1:9090".
func NewUDPTransport(targetAddress string) (*UDPTransport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target %q: %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", targetAddress, err)
	}

	log.Infof("transport: UDP target %s", conn.RemoteAddr())
	return &UDPTransport{conn: conn}, nil
}

// Send marshals data to JSON and writes it as a single packet.
func (t *UDPTransport) Send(data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("UDP transport is closed")
	}
	if _, err := t.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying connection. Safe to call twice.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
