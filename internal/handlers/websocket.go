package handlers

import (
	"encoding/json"
	"net/http"

	"together-backend/internal/middleware"
	"together-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin enforcement is left to the deployment proxy
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub             *services.WSHub
	userService     *services.UserService
	pairService     *services.PairService
	presenceService *services.PresenceService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	pairService *services.PairService,
	presenceService *services.PresenceService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		userService:     userService,
		pairService:     pairService,
		presenceService: presenceService,
	}
}

// HandleWebSocket handles GET /ws?token=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	ctx := r.Context()

	h.hub.Register(userID, conn)
	defer func() {
		h.hub.Unregister(userID)
		h.hub.NotifyPartnerStatus(userID, h.pairService.PartnerID(ctx, userID), false)
	}()

	// A live socket doubles as a heartbeat for the presence feed.
	h.heartbeat(r, userID)

	partnerID := h.pairService.PartnerID(ctx, userID)
	h.hub.NotifyPartnerStatus(userID, partnerID, true)

	pairStatus := services.WSMessage{
		Type: "pair_status",
		Data: map[string]interface{}{"has_pair": partnerID != ""},
	}
	if err := h.hub.SendToUser(userID, pairStatus); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send pair_status message")
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(conn, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "heartbeat":
			h.heartbeat(r, userID)
		default:
			h.sendError(conn, "Unknown message type")
		}
	}
}

// heartbeat records presence under the user's display name.
func (h *WebSocketHandler) heartbeat(r *http.Request, userID string) {
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Heartbeat skipped: unknown user")
		return
	}
	if _, err := h.presenceService.Heartbeat(r.Context(), user.DisplayName); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to record heartbeat")
	}
}

// sendError sends an error message to the WebSocket connection
func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := services.WSMessage{
		Type:    "error",
		Message: message,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Debug().Err(err).Msg("Failed to send error message")
	}
}
