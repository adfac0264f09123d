package transport

import (
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"groove/internal/log"
)

// WebSocketTransport broadcasts snapshots as JSON to every connected client
// on the /ws endpoint.
type WebSocketTransport struct {
	addr      string
	listener  net.Listener
	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
}

var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport binds addr and starts serving immediately. Using
// port 0 picks a free port; Addr reports the bound address.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	wst := &WebSocketTransport{
		addr:     listener.Addr().String(),
		listener: listener,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	wst.server = &http.Server{Handler: mux}

	go func() {
		log.Infof("transport: WebSocket server on %s", wst.addr)
		if err := wst.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("transport: WebSocket server: %v", err)
		}
	}()
	go wst.handleBroadcasts()

	return wst, nil
}

// Addr returns the bound listen address.
func (wst *WebSocketTransport) Addr() string { return wst.addr }

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("transport: upgrade failed: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Infof("transport: client connected, total: %d", total)

	go func() {
		// Block until the client goes away.
		if _, _, err := conn.ReadMessage(); err != nil {
			wst.clientsMu.Lock()
			delete(wst.clients, conn)
			remaining := len(wst.clients)
			wst.clientsMu.Unlock()
			conn.Close()
			log.Infof("transport: client disconnected, total: %d", remaining)
		}
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(data); err != nil {
				log.Warnf("transport: client write failed: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues data for broadcast. A full queue drops the message rather
// than blocking the caller.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case wst.broadcast <- data:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	return wst.server.Close()
}
