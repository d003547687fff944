package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"together-backend/internal/entity"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type        string              `json:"type"`
	Timestamp   int64               `json:"timestamp,omitempty"`
	InitiatorID string              `json:"initiator_id,omitempty"`
	Online      *bool               `json:"online,omitempty"`
	Message     string              `json:"message,omitempty"`
	Event       *entity.ChangeEvent `json:"event,omitempty"`
	Data        interface{}         `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and fans entity change events out to
// every connected partner, replacing interval polling with push.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	pairService *PairService
}

// NewWSHub creates a new WebSocket hub
func NewWSHub(pairService *PairService) *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
		pairService: pairService,
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if existingConn, exists := h.connections[userID]; exists {
		existingConn.Close()
	}
	h.connections[userID] = conn
	h.mu.Unlock()

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	if conn, exists := h.connections[userID]; exists {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
	h.mu.Unlock()
}

// Publish implements entity.Publisher: every mutation reaches every
// connected client as a change message.
func (h *WSHub) Publish(ev entity.ChangeEvent) {
	h.mu.RLock()
	userIDs := make([]string, 0, len(h.connections))
	for userID := range h.connections {
		userIDs = append(userIDs, userID)
	}
	h.mu.RUnlock()

	msg := WSMessage{Type: "change", Event: &ev}
	for _, userID := range userIDs {
		if err := h.SendToUser(userID, msg); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("Failed to deliver change event")
		}
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
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

// IsOnline checks if a user has an open connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyPartnerStatus notifies the partner about online/offline status
func (h *WSHub) NotifyPartnerStatus(userID, partnerID string, online bool) {
	if partnerID == "" {
		return
	}

	message := WSMessage{
		Type:        "partner_status",
		InitiatorID: userID,
		Online:      &online,
	}

	if err := h.SendToUser(partnerID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", partnerID).
			Msg("Failed to notify partner status")
	}
}

// NotifyPairCreated notifies the second user when a pair is created
func (h *WSHub) NotifyPairCreated(partnerID string, pairID string) error {
	return h.SendToUser(partnerID, WSMessage{
		Type: "pair_created",
		Data: map[string]interface{}{"pair_id": pairID},
	})
}

// NotifyPairDeleted notifies the partner when a pair is deleted
func (h *WSHub) NotifyPairDeleted(partnerID string) error {
	return h.SendToUser(partnerID, WSMessage{Type: "pair_deleted"})
}
