package handler

import (
	"net/http"

	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/sirupsen/logrus"
)

// Authenticator verifies a raw bearer token
type Authenticator interface {
	Authenticate(tokenString string) (middleware.Principal, error)
}

// SessionAttacher upgrades an authenticated request to a live alert session
type SessionAttacher interface {
	Attach(w http.ResponseWriter, r *http.Request, userID string, role string) error
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub    SessionAttacher
	auth   Authenticator
	logger *logrus.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub SessionAttacher, auth Authenticator, logger *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		auth:   auth,
		logger: logger,
	}
}

// HandleWebSocket handles GET /ws.
// The token comes from the Authorization header or the token query parameter.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString := middleware.TokenFromRequest(r, true)
	if tokenString == "" {
		h.logger.WithField("remote_addr", r.RemoteAddr).Info("websocket connection rejected: missing token")
		http.Error(w, "unauthorized: missing token", http.StatusUnauthorized)
		return
	}

	principal, err := h.auth.Authenticate(tokenString)
	if err != nil {
		h.logger.WithError(err).Info("websocket connection rejected: invalid token")
		http.Error(w, "unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	// Attach writes its own error response when the upgrade fails
	if err := h.hub.Attach(w, r, principal.UserID, principal.Role); err != nil {
		h.logger.WithError(err).WithField("user_id", principal.UserID).Warn("websocket attach failed")
	}
}
