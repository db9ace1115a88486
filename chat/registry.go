package chat

import (
	"log"
	"sort"
	"sync"
)

// Sender is the send side of one live connection. Implementations must not
// block: a connection that cannot take the payload returns an error instead.
type Sender interface {
	Send(payload []byte) error
}

// Registry tracks every live connection twice: by connection id and by owning
// username. Both indexes are updated under one lock so readers never observe an
// id in one map but not the other.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]Sender
	byUser map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]Sender),
		byUser: make(map[string]map[string]struct{}),
	}
}

// Register adds a connection under the given user. Ids are generated fresh per
// connection, so a collision is a caller bug and not checked here.
func (r *Registry) Register(id string, h Sender, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[id] = h
	set := r.byUser[username]
	if set == nil {
		set = make(map[string]struct{})
		r.byUser[username] = set
	}
	set[id] = struct{}{}
}

// Unregister removes a connection from both indexes. Calling it again for the
// same id is a no-op, so duplicate close notifications are harmless.
func (r *Registry) Unregister(id, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byID, id)
	if set, ok := r.byUser[username]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.byUser, username)
		}
	}
}

// ConnectionsOf returns the ids of every live connection the user owns.
// Unknown users get an empty slice.
func (r *Registry) ConnectionsOf(username string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[username]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Users returns every username owning at least one live connection.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Send delivers a payload to one connection, best effort. A missing or broken
// handle is logged and dropped; it never propagates.
func (r *Registry) Send(id string, payload []byte) {
	r.mu.RLock()
	h, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		log.Printf("send to unknown connection %s dropped", id)
		return
	}
	if err := h.Send(payload); err != nil {
		log.Printf("send to connection %s failed: %v", id, err)
	}
}

// BroadcastTo delivers a payload to each id independently. One dead connection
// never blocks or aborts delivery to the rest.
func (r *Registry) BroadcastTo(ids []string, payload []byte) {
	for _, id := range ids {
		r.Send(id, payload)
	}
}
