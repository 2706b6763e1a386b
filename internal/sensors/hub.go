package sensors

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/metrics"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one websocket connection. mu serialises writes to it.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub tracks connected websocket clients and fans messages out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebsocketClients.Set(float64(n))
	log.WithFields(log.Fields{"remote": conn.RemoteAddr().String(), "clients": n}).Info("Sensor client connected")
}

// unregister forgets conn and closes it. It reports whether conn was still registered.
func (h *Hub) unregister(conn *websocket.Conn) bool {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
		metrics.WebsocketClients.Set(float64(n))
	}
	return ok
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast writes v as JSON to every client concurrently and returns how
// many received it. Clients whose write fails are closed and forgotten.
// The hub lock is not held while writing, so a slow client only delays itself.
func (h *Hub) Broadcast(v any) int {
	var (
		wg   sync.WaitGroup
		sent atomic.Int64
	)
	for _, c := range h.snapshot() {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			if err := c.writeJSON(v); err != nil {
				log.WithError(err).WithField("remote", c.conn.RemoteAddr().String()).Debug("Dropping sensor client")
				if h.unregister(c.conn) {
					metrics.WebsocketDropped.Inc()
				}
				return
			}
			sent.Add(1)
		}(c)
	}
	wg.Wait()
	return int(sent.Load())
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]*client)
	h.mu.Unlock()

	for conn := range clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	metrics.WebsocketClients.Set(0)
}

// ServeWS upgrades the request and keeps the client registered until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	h.register(conn)
	defer h.unregister(conn)

	// Read pump: clients never send data, this only detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
