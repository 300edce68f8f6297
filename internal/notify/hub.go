package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
)

// Event types sent to clients.
const (
	EventConnected    = "connected"
	EventNotification = "notification"
	EventInvalidate   = "invalidate"
)

const recentLimit = 20

// Event is one message on the socket.
type Event struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
	Key          []string             `json:"key,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
	scope  string
}

// Hub tracks sockets per user.
type Hub struct {
	mu      sync.RWMutex
	users   map[string]map[*client]struct{}
	recent  map[string][]models.Notification
	cfg     config.NotificationsConfig
	logger  *zap.Logger
	closing chan struct{}
	once    sync.Once
}

// NewHub constructs a Hub.
func NewHub(cfg config.NotificationsConfig, logger *zap.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:   make(map[string]map[*client]struct{}),
		recent:  make(map[string][]models.Notification),
		cfg:     cfg,
		logger:  logger,
		closing: make(chan struct{}),
	}
}

// Notify queues n for every socket of n.UserID and keeps it in the user's
// recent list.
func (h *Hub) Notify(_ context.Context, n models.Notification) {
	if n.UserID == "" {
		return
	}
	h.mu.Lock()
	list := append(h.recent[n.UserID], n)
	if len(list) > recentLimit {
		list = list[len(list)-recentLimit:]
	}
	h.recent[n.UserID] = list
	h.mu.Unlock()

	note := n
	h.sendToUser(n.UserID, Event{Type: EventNotification, Notification: &note})
}

// Invalidated forwards a query invalidation. Scoped keys reach the sockets of
// that scope only; unscoped keys reach everyone.
func (h *Hub) Invalidated(_ context.Context, key query.Key) {
	payload, err := json.Marshal(Event{Type: EventInvalidate, Key: key.Parts()})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.users {
		for c := range clients {
			if key.Scope() != "" && key.Scope() != c.scope {
				continue
			}
			h.enqueue(c, payload)
		}
	}
}

// Recent returns the latest notifications for userID, oldest first.
func (h *Hub) Recent(userID string) []models.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Notification, len(h.recent[userID]))
	copy(out, h.recent[userID])
	return out
}

// Connections counts open sockets for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Serve owns conn until the peer disconnects or the hub closes. scope is the
// session scope used to route invalidations.
func (h *Hub) Serve(conn *websocket.Conn, userID, scope string) {
	c := &client{conn: conn, send: make(chan []byte, h.cfg.SendBuffer), userID: userID, scope: scope}
	h.register(c)
	defer h.unregister(c)

	if hello, err := json.Marshal(Event{Type: EventConnected}); err == nil {
		h.enqueue(c, hello)
	}

	done := make(chan struct{})
	go h.writePump(c, done)
	h.readPump(c)
	close(done)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.closing) })
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.users[c.userID]; !ok {
		h.users[c.userID] = make(map[*client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
	h.logger.Debug("notification socket connected", zap.String("user_id", c.userID))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.users[c.userID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.users, c.userID)
		}
	}
	h.logger.Debug("notification socket disconnected", zap.String("user_id", c.userID))
}

func (h *Hub) sendToUser(userID string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("marshal notification", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[userID] {
		h.enqueue(c, payload)
	}
}

// enqueue drops the message when the client is too slow to keep up.
func (h *Hub) enqueue(c *client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("notification socket buffer full", zap.String("user_id", c.userID))
	}
}

func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-h.closing:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(h.cfg.WriteTimeout))
			return
		case <-done:
			return
		}
	}
}
