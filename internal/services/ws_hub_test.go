package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alarm-clock-backend/internal/challenge"
	"alarm-clock-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubServer registers every upgraded connection under the scope given in the query
func hubServer(t *testing.T, hub *WSHub) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		scope := models.Scope(r.URL.Query().Get("scope"))
		hub.Register(scope, conn)
		defer hub.Unregister(scope, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialHub(t *testing.T, url, scope string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?scope="+scope, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readHubMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubKeepsEveryAnonymousConnection(t *testing.T) {
	hub := NewWSHub()
	url := hubServer(t, hub)

	first := dialHub(t, url, "")
	second := dialHub(t, url, "")
	require.Eventually(t, func() bool { return hub.connectionCount(models.AnonymousScope) == 2 },
		time.Second, 10*time.Millisecond)

	alarm := &models.Alarm{ID: "a1", Time: "06:00", ChallengeType: models.ChallengeSentence}
	require.True(t, hub.NotifyAlarmFired(alarm, challenge.Challenge{Type: models.ChallengeSentence, Sentence: "Wake up"}))

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readHubMessage(t, conn)
		assert.Equal(t, WSAlarmFired, msg.Type)
		assert.Equal(t, "a1", msg.AlarmID)
	}
}

func TestHubReplacesSignedInConnection(t *testing.T) {
	hub := NewWSHub()
	url := hubServer(t, hub)

	old := dialHub(t, url, "u1")
	require.Eventually(t, func() bool { return hub.IsOnline(models.Scope("u1")) }, time.Second, 10*time.Millisecond)

	current := dialHub(t, url, "u1")

	require.NoError(t, old.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := old.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 1, hub.connectionCount(models.Scope("u1")))

	require.NoError(t, hub.Send(models.Scope("u1"), WSMessage{Type: WSError, Message: "hello"}))
	assert.Equal(t, "hello", readHubMessage(t, current).Message)
}

func TestHubUnregisterLeavesOtherAnonymousConnections(t *testing.T) {
	hub := NewWSHub()
	url := hubServer(t, hub)

	leaving := dialHub(t, url, "")
	staying := dialHub(t, url, "")
	require.Eventually(t, func() bool { return hub.connectionCount(models.AnonymousScope) == 2 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, leaving.Close())
	require.Eventually(t, func() bool { return hub.connectionCount(models.AnonymousScope) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Send(models.AnonymousScope, WSMessage{Type: WSError, Message: "still here"}))
	assert.Equal(t, "still here", readHubMessage(t, staying).Message)
}

func TestHubSendWithoutConnection(t *testing.T) {
	hub := NewWSHub()

	assert.False(t, hub.IsOnline(models.AnonymousScope))
	assert.Error(t, hub.Send(models.AnonymousScope, WSMessage{Type: WSError}))
	assert.False(t, hub.NotifyAlarmFired(&models.Alarm{ID: "a1"}, challenge.Challenge{}))
}
