package relay

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/chatrelay-go/internal/model"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait
	pingPeriod = 54 * time.Second

	// Maximum inbound frame size in bytes. Payload-level validation (the
	// 1000-character message cap) is the router's job; this only bounds
	// what a client can make us buffer.
	maxFrameSize = 8192

	// Buffer size for outgoing frames
	sendBufferSize = 256
)

// Client is one live WebSocket connection. Its read pump feeds decoded
// frames to the router; its write pump drains the send channel.
type Client struct {
	id     model.ConnID
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

// newClient creates a Client for an upgraded connection
func newClient(id model.ConnID, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With(slog.String("conn_id", string(id))),
	}
}

// readPump reads frames from the socket and hands them to the router until
// the connection drops. On exit it removes the client from the hub and
// enqueues the disconnect event so the registry is cleaned up.
func (c *Client) readPump(hub *Hub, router *Router) {
	defer func() {
		hub.remove(c.id)
		router.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected websocket close", slog.Any("error", err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("invalid frame discarded", slog.Any("error", err))
			continue
		}
		router.HandleFrame(c.id, env)
	}
}

// writePump drains the send channel onto the socket, pinging the peer to
// keep the connection alive. It exits when the hub closes the send channel
// or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
