// Package realtime pushes feed and badge events to connected browsers over
// WebSocket. A Hub fans messages out to its local clients; with a Redis
// relay attached, broadcasts travel through Redis so every node delivers
// them.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/infra/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Message is the wire envelope for every pushed event.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Publisher carries encoded messages to every node, including this one.
type Publisher interface {
	Publish(ctx context.Context, raw []byte) error
}

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub tracks connected clients and fans out broadcasts.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	publisher Publisher
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// NewHub creates a hub. allowOrigin decides which browser origins may
// connect; nil allows any.
func NewHub(log *zap.Logger, allowOrigin func(origin string) bool) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowOrigin == nil {
				return true
			}
			return allowOrigin(origin)
		},
	}
	return h
}

// SetPublisher routes broadcasts through p instead of delivering locally.
// p must eventually hand each message back to Deliver.
func (h *Hub) SetPublisher(p Publisher) { h.publisher = p }

// Broadcast encodes data under event and sends it to every client.
// It never blocks on slow clients.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.Warn("realtime encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	raw, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		h.log.Warn("realtime encode failed", zap.String("event", event), zap.Error(err))
		return
	}

	if h.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := h.publisher.Publish(ctx, raw)
		if err == nil {
			return
		}
		h.log.Warn("realtime publish failed, delivering locally", zap.String("event", event), zap.Error(err))
	}
	h.Deliver(raw)
}

// Deliver sends an encoded message to local clients. A client whose
// buffer is full misses the message.
func (h *Hub) Deliver(raw []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- raw:
		default:
			metrics.RealtimeDropped.Inc()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams broadcasts until the client
// disconnects. userID may be empty for anonymous viewers.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.RealtimeClients.Set(0)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.RealtimeClients.Set(float64(n))
	h.log.Debug("realtime client connected", zap.String("user_id", c.userID), zap.Int("clients", n))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.RealtimeClients.Set(float64(n))
}

// readPump discards client frames; it exists to process pongs and detect
// disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
