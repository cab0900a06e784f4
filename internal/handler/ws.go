package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/flowboard/internal/auth"
	"github.com/arefin/flowboard/internal/realtime"
)

// WSHandler upgrades authenticated requests to WebSocket connections and
// hands them to the hub. Authentication happens before the upgrade so a
// failed login never costs a socket.
type WSHandler struct {
	hub    *realtime.Hub
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewWSHandler(hub *realtime.Hub, tokens *auth.TokenService, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, tokens: tokens, logger: logger}
}

// HandleConnect authenticates via the session cookie, then upgrades.
//
// HTTP: GET /api/ws
func (h *WSHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.ExtractUserID(r, h.tokens)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Debug("websocket connecting", slog.String("userID", userID))
	h.hub.ServeWS(w, r, userID)
}
