package chat

import "sync"

// BroadcastChannel is the reserved conversation id every user starts out
// viewing. Account creation rejects it as a username, so it never collides
// with a peer conversation.
const BroadcastChannel = "announcements"

// Presence records, per user, the conversation currently open in their UI:
// either a peer username or BroadcastChannel. Entries survive reconnects;
// a user who was reading a peer chat resumes there.
type Presence struct {
	mu     sync.RWMutex
	active map[string]string
}

func NewPresence() *Presence {
	return &Presence{active: make(map[string]string)}
}

// SetActive records that username is now viewing target, overwriting any
// previous value.
func (p *Presence) SetActive(username, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[username] = target
}

// Active returns the user's open conversation, defaulting to the broadcast
// channel for users who never switched.
func (p *Presence) Active(username string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if target, ok := p.active[username]; ok {
		return target
	}
	return BroadcastChannel
}

// SeedActive sets the user's conversation only when nothing is tracked yet,
// so a racing explicit switch is never overwritten.
func (p *Presence) SeedActive(username, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[username]; !ok {
		p.active[username] = target
	}
}

// Tracked reports whether the user has an entry, default or not.
func (p *Presence) Tracked(username string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.active[username]
	return ok
}

func (p *Presence) IsViewing(username, target string) bool {
	return p.Active(username) == target
}
