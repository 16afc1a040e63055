package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	// ReceivePurchaseStatusTarget is the client method purchase snapshots are delivered to
	ReceivePurchaseStatusTarget = "ReceivePurchaseStatus"

	UserIDHeader = "X-User-ID"

	clientBufferSize = 16
	writeTimeout     = 10 * time.Second
	pongTimeout      = 60 * time.Second
	pingInterval     = (pongTimeout * 9) / 10
)

// hubMessage is the envelope clients receive
type hubMessage struct {
	Target    string        `json:"target"`
	Arguments []interface{} `json:"arguments"`
}

type hubClient struct {
	userID models.ID
	conn   *websocket.Conn
	send   chan []byte
}

// WebSocketNotifier pushes purchase snapshots to the websocket connections of their owner
type WebSocketNotifier struct {
	mu       sync.RWMutex
	clients  map[models.ID]map[*hubClient]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketNotifier creates a new WebSocketNotifier
func NewWebSocketNotifier(logger *slog.Logger) *WebSocketNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketNotifier{
		clients: make(map[models.ID]map[*hubClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and binds the connection to the caller's user id,
// taken from the X-User-ID header or the user_id query parameter.
func (n *WebSocketNotifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		raw = r.URL.Query().Get("user_id")
	}
	userID, err := models.NewID(raw)
	if err != nil {
		http.Error(w, "user ID is required", http.StatusUnauthorized)
		return
	}

	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &hubClient{userID: userID, conn: conn, send: make(chan []byte, clientBufferSize)}
	n.register(c)

	go n.writePump(c)
	go n.readPump(c)
}

// Notify implements domain.Notifier. Users without a connection are skipped; slow
// connections drop the message rather than block the saga.
func (n *WebSocketNotifier) Notify(ctx context.Context, userID models.ID, snapshot events.PurchaseSnapshot) error {
	payload, err := json.Marshal(hubMessage{
		Target:    ReceivePurchaseStatusTarget,
		Arguments: []interface{}{snapshot},
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal purchase status")
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	dropped := 0
	for c := range n.clients[userID] {
		select {
		case c.send <- payload:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		return errors.Errorf("dropped purchase status for %d slow connection(s)", dropped)
	}
	return nil
}

// Connections returns how many connections are open for userID
func (n *WebSocketNotifier) Connections(userID models.ID) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients[userID])
}

// Close disconnects every client
func (n *WebSocketNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for userID, set := range n.clients {
		for c := range set {
			close(c.send)
		}
		delete(n.clients, userID)
	}
}

func (n *WebSocketNotifier) register(c *hubClient) {
	n.mu.Lock()
	defer n.mu.Unlock()

	set, ok := n.clients[c.userID]
	if !ok {
		set = make(map[*hubClient]struct{})
		n.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (n *WebSocketNotifier) unregister(c *hubClient) {
	n.mu.Lock()
	defer n.mu.Unlock()

	set, ok := n.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(n.clients, c.userID)
	}
}

// readPump discards inbound frames and unregisters the client once the connection drops
func (n *WebSocketNotifier) readPump(c *hubClient) {
	defer func() {
		n.unregister(c)
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (n *WebSocketNotifier) writePump(c *hubClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
