package relay

import (
	"log/slog"
	"sync"

	"github.com/mcoot/chatrelay-go/internal/model"
)

// Sender fans outbound events out to connected clients. The router depends
// on this rather than on the Hub directly so the state machine can be tested
// against an injected fake connection set.
type Sender interface {
	// Send delivers an event to a single connection
	Send(id model.ConnID, event model.EventType, data any)
	// Broadcast delivers an event to every connection
	Broadcast(event model.EventType, data any)
	// BroadcastExcept delivers an event to every connection but one
	BroadcastExcept(id model.ConnID, event model.EventType, data any)
}

// Hub tracks all live connections and implements fan-out over them. A client
// is present in the hub from upgrade until its read pump exits, whether or
// not it ever joined the registry.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	logger  *slog.Logger
}

// Ensure Hub implements the fan-out interface
var _ Sender = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "hub")),
	}
}

// add registers a client with the hub
func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", count))
}

// remove unregisters a client and closes its send channel, stopping its
// write pump. The close happens under the write lock: fan-out holds the read
// lock across its sends, so a closed channel can never be sent on. Safe to
// call more than once.
func (h *Hub) remove(id model.ConnID) {
	h.mu.Lock()
	client, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.logger.Info("client disconnected",
		slog.String("conn_id", string(id)),
		slog.Int("total_clients", count))
}

// Send delivers an event to a single connection. Unknown connections and
// full send buffers drop the event.
func (h *Hub) Send(id model.ConnID, event model.EventType, data any) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error("failed to encode event", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[id]
	if !ok {
		return
	}
	h.deliver(client, payload)
}

// Broadcast delivers an event to every connection
func (h *Hub) Broadcast(event model.EventType, data any) {
	h.broadcast("", event, data)
}

// BroadcastExcept delivers an event to every connection except the given one
func (h *Hub) BroadcastExcept(id model.ConnID, event model.EventType, data any) {
	h.broadcast(id, event, data)
}

func (h *Hub) broadcast(except model.ConnID, event model.EventType, data any) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error("failed to encode event", slog.Any("error", err))
		return
	}

	// The read lock is held across the sends; deliver never blocks, and the
	// lock keeps remove from closing a channel mid-fan-out.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.clients {
		if except != "" && id == except {
			continue
		}
		h.deliver(client, payload)
	}
}

// deliver queues a payload onto a client without blocking the caller. Slow
// consumers lose events rather than stalling the relay. Callers hold at
// least the hub's read lock.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.logger.Warn("event dropped - client buffer full",
			slog.String("conn_id", string(client.id)))
	}
}

// ClientCount returns the number of live connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every live connection. Used during graceful shutdown,
// after the listener has stopped accepting new connections.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.conn.Close(); err != nil {
			h.logger.Debug("error closing client connection",
				slog.String("conn_id", string(client.id)),
				slog.Any("error", err))
		}
	}
	h.logger.Info("closed client connections", slog.Int("count", len(clients)))
}
