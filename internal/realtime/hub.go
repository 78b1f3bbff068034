package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/anonto42/wingit/backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventNotification = "notification"
	EventMessage      = "message"
	EventPong         = "pong"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub tracks the open connections of every user.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[string]*Client
	upgrader websocket.Upgrader
	config   Config
	log      *zap.Logger
}

func NewHub(cfg Config, log *zap.Logger) *Hub {
	cfg = cfg.withDefaults()
	h := &Hub{
		clients: make(map[uint]map[string]*Client),
		config:  cfg,
		log:     log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.config.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range h.config.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and runs the client's pumps until the
// connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := newClient(uuid.NewString(), userID, h, conn)
	h.register(client)
	go client.writePump()
	go client.readPump()
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[string]*Client)
	}
	h.clients[c.userID][c.id] = c
	h.mu.Unlock()
	metrics.WebsocketConnected()
	h.log.Debug("websocket client registered", zap.Uint("user_id", c.userID), zap.String("client_id", c.id))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	conns, ok := h.clients[c.userID]
	if ok {
		if _, ok = conns[c.id]; ok {
			delete(conns, c.id)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
			close(c.send)
		}
	}
	h.mu.Unlock()
	if ok {
		metrics.WebsocketDisconnected()
		h.log.Debug("websocket client unregistered", zap.Uint("user_id", c.userID), zap.String("client_id", c.id))
	}
}

// SendToUser delivers the event to every connection of the user. Clients
// whose send buffer is full are disconnected.
func (h *Hub) SendToUser(userID uint, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		h.log.Error("failed to encode websocket event", zap.String("type", eventType), zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	for _, c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow websocket client", zap.Uint("user_id", userID), zap.String("client_id", c.id))
		h.unregister(c)
	}
}

// SendToUsers is SendToUser for several recipients.
func (h *Hub) SendToUsers(userIDs []uint, eventType string, data interface{}) {
	for _, id := range userIDs {
		h.SendToUser(id, eventType, data)
	}
}

// Connections returns the number of open connections of the user.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, conns := range h.clients {
		for _, c := range conns {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.unregister(c)
	}
}
