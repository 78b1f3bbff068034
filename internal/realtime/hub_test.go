package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, hub *Hub, userID uint) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, userID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, userID uint, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections(userID) == n }, 2*time.Second, 10*time.Millisecond)
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestSendToUser(t *testing.T) {
	hub := NewHub(Config{}, zap.NewNop())
	srv := newTestServer(t, hub, 7)
	first := dial(t, srv)
	second := dial(t, srv)
	waitForConnections(t, hub, 7, 2)

	hub.SendToUser(7, EventNotification, map[string]string{"message": "hello"})

	for _, conn := range []*websocket.Conn{first, second} {
		ev := readEvent(t, conn)
		assert.Equal(t, EventNotification, ev["type"])
		assert.Equal(t, "hello", ev["data"].(map[string]interface{})["message"])
	}

	// nobody else is listening
	hub.SendToUser(8, EventMessage, "ignored")
}

func TestPingPong(t *testing.T) {
	hub := NewHub(Config{}, zap.NewNop())
	conn := dial(t, newTestServer(t, hub, 1))
	waitForConnections(t, hub, 1, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","data":"dropped"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	ev := readEvent(t, conn)
	assert.Equal(t, EventPong, ev["type"])
}

func TestUnregisterOnClose(t *testing.T) {
	hub := NewHub(Config{}, zap.NewNop())
	conn := dial(t, newTestServer(t, hub, 3))
	waitForConnections(t, hub, 3, 1)

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, 3, 0)
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub(Config{SendBuffer: 1}, zap.NewNop())
	client := &Client{id: "c1", userID: 5, hub: hub, send: make(chan []byte, 1)}
	hub.register(client)

	hub.SendToUser(5, EventMessage, "one")
	hub.SendToUser(5, EventMessage, "two")

	assert.Equal(t, 0, hub.Connections(5))
	_, ok := <-client.send
	assert.True(t, ok, "buffered event is still readable")
	_, ok = <-client.send
	assert.False(t, ok, "send channel closed after drop")
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub(Config{AllowedOrigins: []string{"http://localhost:3000"}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, hub.checkOrigin(req))
	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, hub.checkOrigin(req))
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, hub.checkOrigin(req))
}
