package chat

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/driftchat/driftchat-backend/models"
)

// Lifecycle is the boundary the transport layer calls into: one method per
// connection event. The transport guarantees events of a single connection
// arrive in order and never overlap; events of different connections run
// concurrently.
type Lifecycle struct {
	registry  *Registry
	presence  *Presence
	directory *Directory
	store     Store
	renderer  Renderer
	avatars   AvatarProvider
	router    *Router
}

func NewLifecycle(reg *Registry, pres *Presence, dir *Directory, store Store, renderer Renderer, avatars AvatarProvider) *Lifecycle {
	return &Lifecycle{
		registry:  reg,
		presence:  pres,
		directory: dir,
		store:     store,
		renderer:  renderer,
		avatars:   avatars,
		router:    NewMessageRouter(reg, pres, dir, store, renderer),
	}
}

func (l *Lifecycle) Router() *Router { return l.router }

// OnConnect registers a fresh connection for the user and returns its id.
// The first time a user is ever seen their avatar is fetched and everyone
// else's chat list is told a new target exists. Presence is seeded from the
// store unless this process already tracks it, defaulting to the broadcast
// channel.
func (l *Lifecycle) OnConnect(ctx context.Context, username string, h Sender) string {
	id := uuid.NewString()
	l.registry.Register(id, h, username)

	if l.directory.Add(username) {
		if known, err := l.store.IsUserKnown(ctx, username); err != nil {
			log.Printf("user lookup for %s: %v", username, err)
		} else if !known {
			// Every connection belongs to a registered account; a user the
			// store has never heard of means state has diverged somewhere.
			log.Printf("connection for unregistered user %s", username)
		}
		l.seedPresence(ctx, username)
		if err := l.avatars.EnsureAvatar(username); err != nil {
			log.Printf("avatar for %s: %v", username, err)
		}
		l.notifyNewTarget(ctx, username)
		return id
	}

	if !l.presence.Tracked(username) {
		l.seedPresence(ctx, username)
	}
	return id
}

// seedPresence points a freshly seen user at their stored conversation, or
// the broadcast channel when the store has nothing. An explicit switch that
// raced ahead of us wins.
func (l *Lifecycle) seedPresence(ctx context.Context, username string) {
	target, err := l.store.ActiveConversation(ctx, username)
	if err != nil {
		log.Printf("active conversation for %s: %v", username, err)
	}
	if target == "" {
		target = BroadcastChannel
	}
	l.presence.SeedActive(username, target)
}

// OnReceive handles one inbound frame. An undecodable payload is dropped and
// the connection stays open.
func (l *Lifecycle) OnReceive(ctx context.Context, id, username string, raw []byte) {
	var msg models.WireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("undecodable payload on connection %s: %v", id, err)
		return
	}

	switch msg.Kind {
	case models.KindOpen:
		fragment, err := l.SwitchConversation(ctx, username, msg.Target)
		if err != nil {
			log.Printf("open conversation for %s: %v", username, err)
			return
		}
		l.registry.Send(id, fragment)
	case models.KindMessage:
		if err := l.router.Route(ctx, username, msg.Body); err != nil {
			log.Printf("route message from %s: %v", username, err)
		}
	default:
		log.Printf("unknown message kind %q from %s", msg.Kind, username)
	}
}

// OnClose drops the connection from the registry. Presence is left alone so
// a reconnect resumes the same conversation. Safe to call twice.
func (l *Lifecycle) OnClose(id, username string) {
	l.registry.Unregister(id, username)
}

// SwitchConversation points the user's presence at target and returns the
// rendered conversation. A failure to persist the switch is logged; the
// in-memory state is already updated and wins for routing.
func (l *Lifecycle) SwitchConversation(ctx context.Context, username, target string) ([]byte, error) {
	if target == "" {
		target = BroadcastChannel
	}
	l.presence.SetActive(username, target)
	if err := l.store.SaveActiveConversation(ctx, username, target); err != nil {
		log.Printf("persist active conversation for %s: %v", username, err)
	}

	key := BroadcastChannel
	if target != BroadcastChannel {
		key = KeyFor(username, target)
	}
	return l.renderer.ConversationFragment(ctx, key)
}

// notifyNewTarget refreshes the chat-target list of every other known user's
// live connections after a brand new user appears.
func (l *Lifecycle) notifyNewTarget(ctx context.Context, newUser string) {
	for _, u := range l.directory.UsersExcept(newUser) {
		ids := l.registry.ConnectionsOf(u)
		if len(ids) == 0 {
			continue
		}
		fragment, err := l.renderer.ControlsFragment(ctx, u)
		if err != nil {
			log.Printf("render controls for %s: %v", u, err)
			continue
		}
		l.registry.BroadcastTo(ids, fragment)
	}
}
