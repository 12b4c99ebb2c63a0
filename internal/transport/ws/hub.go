package ws

import (
	"log"
	"sync"
)

// Hub tracks every live websocket connection
type Hub struct {
	conns map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = struct{}{}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case <-h.done:
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

// Unregister removes a connection and closes its send queue
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		conn.Close()
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll stops the hub and closes every connection; each write pump then
// sends a close frame to its client.
func (h *Hub) CloseAll() {
	h.stopOnce.Do(func() {
		close(h.done)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
	log.Printf("[WS] All connections closed")
}
