package relay

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/chatrelay-go/internal/middleware"
	"github.com/mcoot/chatrelay-go/internal/model"
)

// RouterConfig holds dependencies for the HTTP handler
type RouterConfig struct {
	Logger         *slog.Logger
	Hub            *Hub
	Router         *Router
	AllowedOrigins []string
}

// NewHandler builds the HTTP handler exposing the WebSocket endpoint at /ws
// and a health check at /healthz.
func NewHandler(cfg RouterConfig) http.Handler {
	policy := newOriginPolicy(cfg.AllowedOrigins, cfg.Logger)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     policy.check,
	}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		serveWS(w, req, upgrader, cfg.Hub, cfg.Router, cfg.Logger)
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return r
}

// serveWS upgrades the connection, assigns it a fresh identity, and starts
// its pumps. The connection is inert until it sends user:join.
func serveWS(
	w http.ResponseWriter,
	req *http.Request,
	upgrader websocket.Upgrader,
	hub *Hub,
	router *Router,
	logger *slog.Logger,
) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(model.ConnID(uuid.NewString()), conn, logger)
	hub.add(client)

	go client.writePump()
	go client.readPump(hub, router)
}
