package chat

import (
	"sort"
	"sync"
)

// KeyFor derives the canonical key for the conversation between two users:
// the names sorted and joined, so KeyFor(a, b) == KeyFor(b, a).
func KeyFor(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// Directory is the in-memory set of every user the process has seen, seeded
// from the store at boot and extended as new users connect. Every known user
// is implicitly a member of the broadcast channel; presence, not membership,
// decides who sees a broadcast message.
type Directory struct {
	mu    sync.RWMutex
	known map[string]struct{}
}

func NewDirectory(seed []string) *Directory {
	d := &Directory{known: make(map[string]struct{}, len(seed))}
	for _, u := range seed {
		d.known[u] = struct{}{}
	}
	return d
}

// Add records a user and reports whether this was their first sighting. The
// check and the insert happen under one lock so two racing connects of the
// same new user yield exactly one true.
func (d *Directory) Add(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.known[username]; ok {
		return false
	}
	d.known[username] = struct{}{}
	return true
}

func (d *Directory) Knows(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.known[username]
	return ok
}

// Users returns all known usernames, sorted for stable output.
func (d *Directory) Users() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.known))
	for u := range d.known {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// UsersExcept returns all known usernames other than the given one.
func (d *Directory) UsersExcept(username string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.known))
	for u := range d.known {
		if u != username {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}

// MembersOfBroadcast returns every known user; the broadcast channel has no
// explicit membership list.
func (d *Directory) MembersOfBroadcast() []string {
	return d.Users()
}
