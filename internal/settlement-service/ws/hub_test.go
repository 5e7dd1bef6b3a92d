package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/prediction-ledger/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// roundTrip garante que as mensagens anteriores já foram processadas.
func roundTrip(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	var msg ServerMsg
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "pong", msg.Type)
}

func TestHubDeliversOnlyToSubscribers(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "m1"}))
	require.NoError(t, b.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "m2"}))
	roundTrip(t, a)
	roundTrip(t, b)
	assert.Equal(t, 1, hub.Subscribers("m1"))

	hub.Broadcast(events.MarketUpdate{MarketID: "m1", Status: "open", Version: 7})

	var msg struct {
		Type     string              `json:"type"`
		MarketID string              `json:"marketId"`
		Payload  events.MarketUpdate `json:"payload"`
	}
	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, a.ReadJSON(&msg))
	assert.Equal(t, "update", msg.Type)
	assert.Equal(t, uint64(7), msg.Payload.Version)

	// b não recebe nada além do próprio pong
	roundTrip(t, b)

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "unsubscribe", MarketID: "m1"}))
	roundTrip(t, a)
	assert.Zero(t, hub.Subscribers("m1"))
}
