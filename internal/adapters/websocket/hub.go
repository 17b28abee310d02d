package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var errHubStopped = errors.New("websocket hub stopped")

// ConnectionObserver is told when a client of a role connects (+1) or leaves (-1)
type ConnectionObserver func(role string, delta float64)

// Client represents a websocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	role   string
}

// Hub maintains the set of active clients and routes alerts to them.
// Clinicians (ADMIN) receive every alert; a patient receives alerts about
// themselves on each open session.
type Hub struct {
	clients     map[*Client]bool
	admins      map[*Client]bool
	patients    map[string]map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	mu          sync.RWMutex
	onConnected ConnectionObserver
	logger      *logrus.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger, observer ConnectionObserver) *Hub {
	if observer == nil {
		observer = func(string, float64) {}
	}
	return &Hub{
		clients:     make(map[*Client]bool),
		admins:      make(map[*Client]bool),
		patients:    make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		onConnected: observer,
		logger:      logger,
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if client.role == domain.RoleAdmin {
				h.admins[client] = true
			} else {
				if h.patients[client.userID] == nil {
					h.patients[client.userID] = make(map[*Client]bool)
				}
				h.patients[client.userID][client] = true
			}
			admins, total := len(h.admins), len(h.clients)
			h.mu.Unlock()

			h.onConnected(client.role, 1)
			h.logger.WithFields(logrus.Fields{
				"user_id": client.userID,
				"role":    client.role,
				"admins":  admins,
				"total":   total,
			}).Info("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.removeLocked(client)
			h.mu.Unlock()

			if removed {
				h.logger.WithFields(logrus.Fields{
					"user_id": client.userID,
					"role":    client.role,
				}).Info("websocket client disconnected")
			}
		}
	}
}

// removeLocked drops a client and closes its send channel. Caller holds h.mu.
func (h *Hub) removeLocked(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	delete(h.admins, client)
	if sessions, ok := h.patients[client.userID]; ok {
		delete(sessions, client)
		if len(sessions) == 0 {
			delete(h.patients, client.userID)
		}
	}
	close(client.send)
	h.onConnected(client.role, -1)
	return true
}

// SendAlert delivers a message to every clinician and to the patient the
// alert is about. Slow clients with a full buffer are disconnected.
// Returns the number of clients the message was queued for.
func (h *Hub) SendAlert(patientID string, message []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := make([]*Client, 0, len(h.admins)+len(h.patients[patientID]))
	for client := range h.admins {
		targets = append(targets, client)
	}
	for client := range h.patients[patientID] {
		targets = append(targets, client)
	}

	sent := 0
	for _, client := range targets {
		select {
		case client.send <- message:
			sent++
		default:
			h.logger.WithField("user_id", client.userID).Warn("websocket client too slow, disconnecting")
			h.removeLocked(client)
		}
	}
	return sent
}

// ConnectedCounts returns the number of connected clinicians and clients
func (h *Hub) ConnectedCounts() (admins int, total int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.admins), len(h.clients)
}

// Attach upgrades the request and registers the connection for the user.
// Authentication happens before this call.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, userID string, role string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		role:   role,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump pumps messages from the websocket connection to the hub.
// Clients never send data; reading only keeps pong deadlines moving.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).WithField("user_id", c.userID).Warn("websocket read error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One alert per frame so clients can parse each as JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
