package notifier

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/expofair/expofair-api/internal/domain"
)

// Client is one connected websocket subscriber.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	userID   uuid.UUID
	userRole string
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, userRole string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, 16),
		userID:   userID,
		userRole: userRole,
	}
}

// Hub pushes lifecycle events to connected users: the brand that owns
// the application, plus every connected organiser/manager.
type Hub struct {
	clients      map[uuid.UUID]*Client
	clientsMutex sync.RWMutex
	register     chan *Client
	unregister   chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client.userID] = client
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.clientsMutex.Unlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Notify(_ context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	for _, client := range h.clients {
		if client.userID != event.BrandID &&
			client.userRole != domain.RoleOrganiser &&
			client.userRole != domain.RoleManager {
			continue
		}

		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop rather than block the lifecycle.
		}
	}

	return nil
}

// WritePump drains the client's send channel onto the websocket until
// the channel closes or a write fails.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			zap.L().Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// ReadPump discards inbound frames and reports when the peer goes away.
func (c *Client) ReadPump(onClose func()) {
	defer func() {
		onClose()
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
