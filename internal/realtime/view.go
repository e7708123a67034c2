package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"cachestore/internal/mapping"
)

// Message is what websocket clients of a view receive.
type Message struct {
	Type  string         `json:"type"`
	View  string         `json:"view"`
	Patch map[string]any `json:"patch,omitempty"`
	State map[string]any `json:"state,omitempty"`
}

// View is a named piece of client state fed by cache mappings.
// It merges every partial update into its state and pushes the patch to the hub.
type View struct {
	id  string
	hub *Hub

	mu    sync.RWMutex
	state map[string]any
}

// NewView builds an empty view broadcasting through hub. hub may be nil.
func NewView(id string, hub *Hub) *View {
	return &View{id: id, hub: hub, state: make(map[string]any)}
}

// ID returns the view identifier.
func (v *View) ID() string {
	return v.id
}

// SetState implements mapping.Subscriber.
func (v *View) SetState(update map[string]any) {
	v.mu.Lock()
	for field, val := range update {
		v.state[field] = val
	}
	v.mu.Unlock()

	if v.hub == nil {
		return
	}
	msg, err := json.Marshal(Message{Type: "state", View: v.id, Patch: update})
	if err != nil {
		log.Printf("realtime: encode patch for view %s: %v", v.id, err)
		return
	}
	v.hub.Broadcast(v.id, msg)
}

// State returns a copy of the current state.
func (v *View) State() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]any, len(v.state))
	for field, val := range v.state {
		out[field] = val
	}
	return out
}

// Snapshot encodes the full state as a message, sent to clients when they connect.
func (v *View) Snapshot() ([]byte, error) {
	return json.Marshal(Message{Type: "snapshot", View: v.id, State: v.State()})
}

// Views keeps one View per id.
type Views struct {
	hub *Hub

	mu    sync.Mutex
	views map[string]*View
}

// NewViews builds an empty set of views sharing hub.
func NewViews(hub *Hub) *Views {
	return &Views{hub: hub, views: make(map[string]*View)}
}

// Get returns the view id, creating it on first use.
func (vs *Views) Get(id string) *View {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	v, ok := vs.views[id]
	if !ok {
		v = NewView(id, vs.hub)
		vs.views[id] = v
	}
	return v
}

// Lookup returns the view id if it was already created.
func (vs *Views) Lookup(id string) (*View, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	v, ok := vs.views[id]
	return v, ok
}

// Ensure View implements mapping.Subscriber at compile time.
var _ mapping.Subscriber = (*View)(nil)
