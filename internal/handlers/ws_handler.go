package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ConnectionServer upgrades an HTTP request into a realtime connection.
type ConnectionServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error
}

// WebSocketHandler attaches authenticated users to the realtime hub
type WebSocketHandler struct {
	hub ConnectionServer
	log *zap.Logger
}

func NewWebSocketHandler(hub ConnectionServer, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// Connect upgrades the request. The upgrader has already written the HTTP
// error when the handshake fails, so only the log remains to do.
func (h *WebSocketHandler) Connect(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if err := h.hub.ServeWS(c.Response(), c.Request(), userID); err != nil {
		h.log.Info("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return nil
}
