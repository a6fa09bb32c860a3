package wshub

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"impostor/internal/events"
)

// Inbound is the JSON envelope received from clients.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	evicted atomic.Bool
}

// Evicted reports whether the hub gave up on this client after its buffer
// filled.
func (c *Client) Evicted() bool {
	return c.evicted.Load()
}

func NewClient(id string, conn *websocket.Conn, buffer int) *Client {
	return &Client{ID: id, Conn: conn, Send: make(chan []byte, buffer)}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks live connections and named groups of them. Every send is
// non-blocking. A client whose buffer fills is evicted: its connection is
// closed and the server's read loop runs the usual disconnect.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{}
	log     zerolog.Logger

	// OnDrop, when set, is called for every message dropped on a full buffer.
	OnDrop func()
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client from the hub and every group, then closes its
// Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	close(c.Send)
	delete(h.clients, id)
	for name, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, name)
		}
	}
}

func (h *Hub) Join(id, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]struct{})
		h.groups[group] = members
	}
	members[id] = struct{}{}
}

func (h *Hub) Leave(id, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[group]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// GroupSize counts the connections in group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers msg to one connection.
func (h *Hub) Send(id string, msg events.Message) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[id]; ok {
		h.deliver(c, msg.Type, data)
	}
}

// Broadcast delivers msg to every member of group except the listed ids.
func (h *Hub) Broadcast(group string, msg events.Message, except ...string) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[group] {
		if slices.Contains(except, id) {
			continue
		}
		if c, ok := h.clients[id]; ok {
			h.deliver(c, msg.Type, data)
		}
	}
}

func (h *Hub) encode(msg events.Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("marshal outbound message")
		return nil, false
	}
	return data, true
}

func (h *Hub) deliver(c *Client, typ string, data []byte) {
	if c.Evicted() {
		return
	}
	select {
	case c.Send <- data:
	default:
		h.log.Warn().Str("conn_id", c.ID).Str("type", typ).Msg("send buffer full, evicting client")
		if h.OnDrop != nil {
			h.OnDrop()
		}
		if c.evicted.CompareAndSwap(false, true) && c.Conn != nil {
			go c.Conn.Close(websocket.StatusPolicyViolation, "client too slow")
		}
	}
}
