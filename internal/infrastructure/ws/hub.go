package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Hub tracks the live socket for each connected user. One client per
// user; a new connection for the same user replaces the old one.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register attaches the client as the user's live socket, closing any
// previous one.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	prev := h.clients[client.UserID]
	h.clients[client.UserID] = client
	h.mu.Unlock()
	if prev != nil && prev != client {
		prev.Close()
	}
}

// Unregister detaches the client, but only if it is still the user's
// current socket. A stale connection closing must not evict its
// replacement.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if h.clients[client.UserID] == client {
		delete(h.clients, client.UserID)
	}
	h.mu.Unlock()
	client.Close()
}

// Get returns the user's live client, or nil when offline.
func (h *Hub) Get(userID uuid.UUID) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[userID]
}

// ClientCount returns the number of connected users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers an event to the user if they are online. Reports whether
// the event was enqueued.
func (h *Hub) Send(userID uuid.UUID, event Event) bool {
	c := h.Get(userID)
	if c == nil {
		return false
	}
	return c.Enqueue(event)
}
