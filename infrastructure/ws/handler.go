package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"chat-relay/contract"
)

// Handler upgrades HTTP requests to websocket sessions and runs each
// session until the client disconnects.
type Handler struct {
	log         *slog.Logger
	coordinator contract.ICoordinator
	upgrader    websocket.Upgrader
	bufferSize  int
}

func NewHandler(log *slog.Logger, coordinator contract.ICoordinator, bufferSize int) *Handler {
	return &Handler{
		log:         log,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity is client-asserted anyway, so no origin gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	session := newSession(conn, h.coordinator, h.log, h.bufferSize)
	h.log.Info("Client connected", "session_id", session.id, "remote", conn.RemoteAddr().String())
	session.run(r.Context())
	h.log.Info("Client disconnected", "session_id", session.id)
}
