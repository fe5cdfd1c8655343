package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"alarm-clock-backend/internal/challenge"
	"alarm-clock-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type         string               `json:"type"`
	AlarmID      string               `json:"alarm_id,omitempty"`
	Event        string               `json:"event,omitempty"`
	ResponseTime *int                 `json:"response_time,omitempty"`
	Message      string               `json:"message,omitempty"`
	Alarm        *models.Alarm        `json:"alarm,omitempty"`
	Challenge    *challenge.Challenge `json:"challenge,omitempty"`
}

// Message types
const (
	WSAlarmFired = "alarm_fired"
	WSWakeResult = "wake_result"
	WSRecorded   = "recorded"
	WSError      = "error"
)

// wsConn serialises writes, which gorilla/websocket does not allow concurrently
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub keeps the live connections of each scope. A signed-in user has at
// most one; a newer connection replaces the older. Tokenless clients all share
// the anonymous scope, so any number of them stay connected side by side and
// each receives its messages.
type WSHub struct {
	mu          sync.RWMutex
	connections map[models.Scope]map[*websocket.Conn]*wsConn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[models.Scope]map[*websocket.Conn]*wsConn),
	}
}

// Register adds the connection of a scope. For a signed-in user it replaces any previous one.
func (h *WSHub) Register(scope models.Scope, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, exists := h.connections[scope]
	if !exists || !scope.IsAnonymous() {
		for _, existing := range conns {
			existing.conn.Close()
		}
		conns = make(map[*websocket.Conn]*wsConn)
		h.connections[scope] = conns
	}
	conns[conn] = &wsConn{conn: conn}

	log.Info().Str("scope", scope.String()).Int("connections", len(conns)).Msg("WebSocket connection registered")
}

// Unregister removes conn from a scope if it is still registered
func (h *WSHub) Unregister(scope models.Scope, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.connections[scope]
	if existing, exists := conns[conn]; exists {
		existing.conn.Close()
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, scope)
		}
		log.Info().Str("scope", scope.String()).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a scope has a live connection
func (h *WSHub) IsOnline(scope models.Scope) bool {
	return h.connectionCount(scope) > 0
}

func (h *WSHub) connectionCount(scope models.Scope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[scope])
}

// Send sends a message to every connection of a scope. It fails only when no connection received it.
func (h *WSHub) Send(scope models.Scope, message WSMessage) error {
	h.mu.RLock()
	targets := make([]*wsConn, 0, len(h.connections[scope]))
	for _, c := range h.connections[scope] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return fmt.Errorf("scope %s is not connected", scope)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	delivered := 0
	var lastErr error
	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.Unregister(scope, c.conn)
			lastErr = err
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("failed to send message: %w", lastErr)
	}

	return nil
}

// Reply sends a message to one connection of a scope only
func (h *WSHub) Reply(scope models.Scope, conn *websocket.Conn, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[scope][conn]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection of scope %s is not registered", scope)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(scope, conn)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// NotifyAlarmFired delivers a fired alarm and its challenge to the owner.
// It reports false when the owner has no live connection.
func (h *WSHub) NotifyAlarmFired(alarm *models.Alarm, ch challenge.Challenge) bool {
	scope := alarm.Scope()
	if !h.IsOnline(scope) {
		return false
	}

	err := h.Send(scope, WSMessage{
		Type:      WSAlarmFired,
		AlarmID:   alarm.ID,
		Alarm:     alarm,
		Challenge: &ch,
	})
	if err != nil {
		log.Error().Err(err).Str("alarm_id", alarm.ID).Msg("Failed to deliver fired alarm")
		return false
	}
	return true
}
