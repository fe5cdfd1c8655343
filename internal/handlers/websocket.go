package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"alarm-clock-backend/internal/middleware"
	"alarm-clock-backend/internal/models"
	"alarm-clock-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub           *services.WSHub
	userService   *services.UserService
	wakeupService *services.WakeupService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	wakeupService *services.WakeupService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		userService:   userService,
		wakeupService: wakeupService,
	}
}

// HandleWebSocket handles GET /ws. The token query parameter is optional;
// without it the connection receives alarms of the anonymous scope.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.ScopeFromToken(r.URL.Query().Get("token"), h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(scope, conn)
	defer h.hub.Unregister(scope, conn)

	log.Info().Str("scope", scope.String()).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("scope", scope.String()).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to parse WebSocket message")
			h.sendError(scope, conn, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, scope, conn, msg); err != nil {
			log.Error().Err(err).Str("scope", scope.String()).Str("type", msg.Type).Msg("Failed to handle message")
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, scope models.Scope, conn *websocket.Conn, msg services.WSMessage) error {
	switch msg.Type {
	case services.WSWakeResult:
		return h.handleWakeResult(ctx, scope, conn, msg)
	default:
		return h.sendError(scope, conn, "Unknown message type")
	}
}

// handleWakeResult records the outcome of a fired alarm reported by the client
func (h *WebSocketHandler) handleWakeResult(ctx context.Context, scope models.Scope, conn *websocket.Conn, msg services.WSMessage) error {
	var alarmID *string
	if msg.AlarmID != "" {
		alarmID = &msg.AlarmID
	}

	_, err := h.wakeupService.Record(ctx, scope, services.RecordEventRequest{
		Event:        msg.Event,
		AlarmID:      alarmID,
		ResponseTime: msg.ResponseTime,
	})
	if err != nil {
		if sendErr := h.sendError(scope, conn, clientMessage(err, "Failed to record wake result")); sendErr != nil {
			return sendErr
		}
		return err
	}

	log.Info().
		Str("scope", scope.String()).
		Str("alarm_id", msg.AlarmID).
		Str("event", msg.Event).
		Msg("Wake result recorded")

	return h.hub.Reply(scope, conn, services.WSMessage{
		Type:    services.WSRecorded,
		AlarmID: msg.AlarmID,
		Event:   msg.Event,
	})
}

// sendError sends an error message back to the connection that caused it
func (h *WebSocketHandler) sendError(scope models.Scope, conn *websocket.Conn, message string) error {
	return h.hub.Reply(scope, conn, services.WSMessage{
		Type:    services.WSError,
		Message: message,
	})
}
