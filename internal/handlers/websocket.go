package handlers

import (
	"net/http"

	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades authenticated clients onto the partner channel.
type WebSocketHandler struct {
	verifier services.TokenVerifier
	users    *services.UserService
	hub      *services.Hub
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(verifier services.TokenVerifier, users *services.UserService, hub *services.Hub) *WebSocketHandler {
	return &WebSocketHandler{verifier: verifier, users: users, hub: hub}
}

// Serve handles GET /ws?token=<jwt>. Browsers cannot set headers on the
// WebSocket handshake, so the token travels as a query parameter.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	identity, err := h.verifier.Verify(ctx, token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByUID(ctx, identity.Subject)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("WebSocket upgrade failed")
		return
	}

	h.hub.Register(user.ID, conn)
	h.hub.NotifyPartnerStatus(user.PartnerID, true)

	if user.PartnerID != nil {
		online := h.hub.IsOnline(*user.PartnerID)
		conn.WriteJSON(services.WSMessage{Type: services.EventPartnerStatus, Online: &online})
	}

	go h.readLoop(user, conn)
}

// readLoop drains client frames until the connection drops, then tears the
// registration down and tells the partner.
func (h *WebSocketHandler) readLoop(user *models.User, conn *websocket.Conn) {
	defer func() {
		h.hub.Unregister(user.ID)
		h.hub.NotifyPartnerStatus(user.PartnerID, false)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", user.ID).Msg("WebSocket read error")
			}
			return
		}
	}
}
