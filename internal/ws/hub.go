package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/goroutine"
	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// Hub manages live connections of customers, staff and admins. Order
// lifecycle events go to the parties of the order; payment review events
// additionally fan out to every connected admin.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	roles      map[uuid.UUID]string
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		roles:      make(map[uuid.UUID]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run drives the hub loop. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register adds a client.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyUser sends an event to every connection of one user. The wire
// contract: "type" is the event name, "data" the payload.
func (h *Hub) NotifyUser(userID uuid.UUID, event string, data any) error {
	payload := map[string]any{
		"type": event,
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ws: marshal message: %w", err)
	}

	h.broadcast <- message{userID: userID, payload: raw}
	return nil
}

// NotifyAdmins sends an event to every connected admin.
func (h *Hub) NotifyAdmins(event string, data any) {
	h.mu.RLock()
	admins := make([]uuid.UUID, 0)
	for userID, role := range h.roles {
		if role == models.RoleAdmin {
			admins = append(admins, userID)
		}
	}
	h.mu.RUnlock()

	for _, userID := range admins {
		if err := h.NotifyUser(userID, event, data); err != nil {
			logger.Log.Errorf("ws: admin notify failed: %v", err)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	h.roles[client.userID] = client.role
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
			delete(h.roles, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop the connection off the hub loop.
			c := client
			goroutine.SafeGo(func() { c.Close() })
		}
	}
}
