package realtime

import (
	"sync"
)

// Client is one watcher of a view. Send reports whether the message was written.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub tracks the clients watching each view.
type Hub struct {
	mu    sync.RWMutex
	views map[string]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{views: make(map[string]map[Client]struct{})}
}

// Register adds client to the watchers of viewID.
func (h *Hub) Register(viewID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.views[viewID]
	if !ok {
		clients = make(map[Client]struct{})
		h.views[viewID] = clients
	}
	clients[client] = struct{}{}
}

// Unregister removes client; a view without watchers is forgotten.
func (h *Hub) Unregister(viewID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.views[viewID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.views, viewID)
	}
}

// Clients returns how many clients watch viewID.
func (h *Hub) Clients(viewID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.views[viewID])
}

// Broadcast sends message to every watcher of viewID and returns how many
// accepted it. Sends happen outside the hub lock so a slow client only delays
// this call. Failed clients stay registered until their handler unregisters them.
func (h *Hub) Broadcast(viewID string, message []byte) int {
	h.mu.RLock()
	clients := make([]Client, 0, len(h.views[viewID]))
	for c := range h.views[viewID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if c.Send(message) {
			sent++
		}
	}
	return sent
}
