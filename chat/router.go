package chat

import (
	"context"
	"fmt"
	"log"
)

// Store is the durable side of the chat service. The router hands every
// message to it; it never reads history back (the renderer does).
type Store interface {
	AppendMessage(ctx context.Context, chatKey, sender, body string) error
	ActiveConversation(ctx context.Context, username string) (string, error)
	SaveActiveConversation(ctx context.Context, username, target string) error
	IsUserKnown(ctx context.Context, username string) (bool, error)
	ListKnownUsers(ctx context.Context) ([]string, error)
}

// Renderer produces the markup pushed over live connections.
type Renderer interface {
	ConversationFragment(ctx context.Context, chatKey string) ([]byte, error)
	ControlsFragment(ctx context.Context, username string) ([]byte, error)
}

// AvatarProvider makes sure a user has an avatar on disk. Failures are
// advisory only.
type AvatarProvider interface {
	EnsureAvatar(username string) error
}

// Router computes, for each inbound message, exactly which connections must
// receive the rendered update, persists the message, and delivers.
type Router struct {
	registry  *Registry
	presence  *Presence
	directory *Directory
	store     Store
	renderer  Renderer
}

func NewMessageRouter(reg *Registry, pres *Presence, dir *Directory, store Store, renderer Renderer) *Router {
	return &Router{registry: reg, presence: pres, directory: dir, store: store, renderer: renderer}
}

// Route fans a message out. The conversation it lands in is the one the
// sender currently has open, read from presence, never from the payload.
//
// Recipients are the sender's own connections, the addressed peer's
// connections when that peer is looking back at the sender, and, for the
// broadcast channel, every connection of every user currently viewing it.
// A peer who is not viewing the conversation gets nothing live; the stored
// message is waiting when they next open it.
func (rt *Router) Route(ctx context.Context, sender, body string) error {
	target := rt.presence.Active(sender)

	recipients := make(map[string]struct{})
	if target == BroadcastChannel {
		for _, u := range rt.directory.MembersOfBroadcast() {
			if !rt.presence.IsViewing(u, BroadcastChannel) {
				continue
			}
			for _, id := range rt.registry.ConnectionsOf(u) {
				recipients[id] = struct{}{}
			}
		}
	}

	senderConns := rt.registry.ConnectionsOf(sender)
	if len(senderConns) == 0 {
		// Should not happen: routing only runs for registered connections.
		log.Printf("message from %s but no registered connections", sender)
	}
	for _, id := range senderConns {
		recipients[id] = struct{}{}
	}

	if target != BroadcastChannel && rt.presence.IsViewing(target, sender) {
		for _, id := range rt.registry.ConnectionsOf(target) {
			recipients[id] = struct{}{}
		}
	}

	key := BroadcastChannel
	if target != BroadcastChannel {
		key = KeyFor(sender, target)
	}

	if err := rt.store.AppendMessage(ctx, key, sender, body); err != nil {
		return fmt.Errorf("append message to %s: %w", key, err)
	}

	fragment, err := rt.renderer.ConversationFragment(ctx, key)
	if err != nil {
		return fmt.Errorf("render conversation %s: %w", key, err)
	}
	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}
	rt.registry.BroadcastTo(ids, fragment)

	// The sender's other tabs also need their conversation list refreshed.
	controls, err := rt.renderer.ControlsFragment(ctx, sender)
	if err != nil {
		return fmt.Errorf("render controls for %s: %w", sender, err)
	}
	rt.registry.BroadcastTo(senderConns, controls)
	return nil
}
