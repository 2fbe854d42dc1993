// Package stream broadcasts committed ledger events to websocket
// subscribers. The hub is an event sink alongside the journal store; a slow
// or dead client is dropped rather than allowed to stall the feed.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/observability"
)

// HubConfig configures websocket hub behavior.
type HubConfig struct {
	// SendBuffer is the per-client outbound queue length. A client whose
	// queue is full has events dropped.
	SendBuffer int
	// WriteTimeout is the deadline for writing a frame to a client.
	WriteTimeout time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// PongTimeout is how long to wait for a pong before dropping.
	PongTimeout time.Duration
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:   64,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

// wireEvent is the JSON shape sent to subscribers.
type wireEvent struct {
	Type      string `json:"type"`
	Amount    uint64 `json:"amount"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Actor     string `json:"actor"`
	RefKind   string `json:"ref_kind,omitempty"`
	RefID     int64  `json:"ref_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Hub fans ledger events out to connected websocket clients.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. config may be nil for defaults.
func NewHub(logger *log.Logger, config *HubConfig) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}

	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is broadcast-only public data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Append broadcasts a committed ledger event to all connected clients.
// It satisfies ledger.EventSink and never blocks on a slow client.
func (h *Hub) Append(_ context.Context, e *domain.LedgerEvent) error {
	payload, err := json.Marshal(wireEvent{
		Type:      e.Type.String(),
		Amount:    e.Amount,
		From:      e.From,
		To:        e.To,
		Actor:     e.Actor,
		RefKind:   e.RefKind,
		RefID:     e.RefID,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			observability.RecordStreamDropped()
		}
	}
	return nil
}

// ServeHTTP upgrades the request to a websocket and streams events until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("websocket upgrade failed: %v", err)
		}
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	observability.SetStreamClients(n)

	go h.writePump(c)
	h.readPump(c)
}

// writePump drains the client's send queue and keeps the connection alive
// with pings.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop unregisters a client and closes its connection.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	c.conn.Close()
	observability.SetStreamClients(n)
}

// Close disconnects all clients and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
	h.mu.Unlock()
	observability.SetStreamClients(0)
}
