package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types pushed to a connected partner.
const (
	EventPartnerLinked = "partner_linked"
	EventTaskCompleted = "task_completed"
	EventTurnPassed    = "turn_passed"
	EventPartnerStatus = "partner_status"
)

// WSMessage is one event on the partner channel.
type WSMessage struct {
	Type   string      `json:"type"`
	Online *bool       `json:"online,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Hub manages WebSocket connections keyed by application user id.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{connections: make(map[string]*websocket.Conn)}
}

// Register stores a connection for a user, replacing any existing one.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn
	h.mu.Unlock()

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister closes and removes a user's connection.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	if conn, ok := h.connections[userID]; ok {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
	h.mu.Unlock()
}

// IsOnline reports whether a user has an open connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser delivers a message to a connected user.
func (h *Hub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// notify sends an event to the partner when connected; offline partners are
// simply skipped.
func (h *Hub) notify(partnerID *string, message WSMessage) {
	if partnerID == nil || !h.IsOnline(*partnerID) {
		return
	}
	if err := h.SendToUser(*partnerID, message); err != nil {
		log.Warn().Err(err).Str("user_id", *partnerID).Str("type", message.Type).Msg("Failed to notify partner")
	}
}

// NotifyPartnerLinked tells the code owner their account was just linked.
func (h *Hub) NotifyPartnerLinked(partnerID string, name, email string) {
	h.notify(&partnerID, WSMessage{
		Type: EventPartnerLinked,
		Data: map[string]string{"name": name, "email": email},
	})
}

// NotifyTaskCompleted tells the partner the other half finished today's task.
func (h *Hub) NotifyTaskCompleted(partnerID *string, taskID string, bothCompleted bool) {
	h.notify(partnerID, WSMessage{
		Type: EventTaskCompleted,
		Data: map[string]interface{}{"taskId": taskID, "bothCompleted": bothCompleted},
	})
}

// NotifyTurnPassed tells the partner it is now their turn.
func (h *Hub) NotifyTurnPassed(partnerID *string) {
	h.notify(partnerID, WSMessage{Type: EventTurnPassed})
}

// NotifyPartnerStatus tells the partner about online/offline transitions.
func (h *Hub) NotifyPartnerStatus(partnerID *string, online bool) {
	h.notify(partnerID, WSMessage{Type: EventPartnerStatus, Online: &online})
}
