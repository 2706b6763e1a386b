package sensors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/metro-fleet/internal/models"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	a := dialHub(t, srv)
	defer a.Close()
	b := dialHub(t, srv)
	defer b.Close()
	waitForClients(t, hub, 2)

	sent := hub.Broadcast(models.SensorReading{ID: 7, TrainID: 3, SensorType: models.SensorTemperature, Value: 95.2})
	assert.Equal(t, 2, sent)

	for _, conn := range []*websocket.Conn{a, b} {
		var got models.SensorReading
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, 95.2, got.Value)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
	assert.Equal(t, 0, hub.Broadcast(map[string]string{"ping": "pong"}))
}

func TestHub_FailedClientIsDropped(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()
	waitForClients(t, hub, 1)

	// Close the server side of the connection so the next write fails.
	hub.mu.Lock()
	for c := range hub.clients {
		_ = c.UnderlyingConn().Close()
	}
	hub.mu.Unlock()

	assert.Equal(t, 0, hub.Broadcast(models.SensorReading{ID: 1}))
	assert.Equal(t, 0, hub.Count())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Count())
}

func TestHub_StalledClientDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	a := dialHub(t, srv)
	defer a.Close()
	b := dialHub(t, srv)
	defer b.Close()
	waitForClients(t, hub, 2)

	// Hold one client's write lock as if its write were stuck.
	stalled := hub.snapshot()[0]
	stalled.mu.Lock()

	done := make(chan int, 1)
	go func() { done <- hub.Broadcast(models.SensorReading{ID: 9}) }()

	// The other client receives the reading while the broadcast is still pending.
	received := 0
	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
		var got models.SensorReading
		if err := conn.ReadJSON(&got); err == nil {
			assert.Equal(t, int64(9), got.ID)
			received++
		}
	}
	assert.Equal(t, 1, received)

	// Registering and counting do not wait on the stalled write.
	c := dialHub(t, srv)
	defer c.Close()
	waitForClients(t, hub, 3)

	stalled.mu.Unlock()
	select {
	case sent := <-done:
		assert.Equal(t, 2, sent)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast did not finish after the stalled client was released")
	}
}
