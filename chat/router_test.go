package chat

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type routerFixture struct {
	registry  *Registry
	presence  *Presence
	directory *Directory
	store     *fakeStore
	router    *Router
	alice     *fakeSender // c1
	bob       *fakeSender // c2
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		registry:  NewRegistry(),
		presence:  NewPresence(),
		directory: NewDirectory([]string{"alice", "bob"}),
		store:     newFakeStore(),
		alice:     &fakeSender{},
		bob:       &fakeSender{},
	}
	f.router = NewMessageRouter(f.registry, f.presence, f.directory, f.store, fakeRenderer{})
	f.registry.Register("c1", f.alice, "alice")
	f.registry.Register("c2", f.bob, "bob")
	return f
}

func TestBroadcastReachesEveryViewer(t *testing.T) {
	f := newRouterFixture(t)

	// Both users default to the broadcast channel.
	if err := f.router.Route(context.Background(), "alice", "hello all"); err != nil {
		t.Fatal(err)
	}

	want := "conv:" + BroadcastChannel
	if got := f.alice.received(); len(got) == 0 || got[0] != want {
		t.Fatalf("alice received %v, want first %q", got, want)
	}
	if got := f.bob.received(); !reflect.DeepEqual(got, []string{want}) {
		t.Fatalf("bob received %v, want [%q]", got, want)
	}

	msgs := f.store.appendedMessages()
	if len(msgs) != 1 || msgs[0].key != BroadcastChannel || msgs[0].sender != "alice" {
		t.Fatalf("stored messages = %v", msgs)
	}
}

func TestPeerNotViewingGetsNothingLive(t *testing.T) {
	f := newRouterFixture(t)
	f.presence.SetActive("alice", "bob") // bob stays on the broadcast channel

	if err := f.router.Route(context.Background(), "alice", "psst"); err != nil {
		t.Fatal(err)
	}

	if got := f.bob.count(); got != 0 {
		t.Fatalf("bob received %d payloads, want 0", got)
	}
	wantConv := "conv:" + KeyFor("alice", "bob")
	if got := f.alice.received(); len(got) != 2 || got[0] != wantConv || got[1] != "controls:alice" {
		t.Fatalf("alice received %v, want [%q controls:alice]", got, wantConv)
	}

	// The message is still persisted for bob to read later.
	msgs := f.store.appendedMessages()
	if len(msgs) != 1 || msgs[0].key != KeyFor("alice", "bob") {
		t.Fatalf("stored messages = %v", msgs)
	}
}

func TestPeerViewingBackReceivesLive(t *testing.T) {
	f := newRouterFixture(t)
	f.presence.SetActive("alice", "bob")
	f.presence.SetActive("bob", "alice")

	if err := f.router.Route(context.Background(), "alice", "hi bob"); err != nil {
		t.Fatal(err)
	}

	wantConv := "conv:" + KeyFor("alice", "bob")
	if got := f.bob.received(); !reflect.DeepEqual(got, []string{wantConv}) {
		t.Fatalf("bob received %v, want [%q]", got, wantConv)
	}
	if got := f.alice.received(); len(got) != 2 || got[0] != wantConv {
		t.Fatalf("alice received %v", got)
	}
}

func TestBroadcastSkipsUsersViewingElsewhere(t *testing.T) {
	f := newRouterFixture(t)
	f.presence.SetActive("bob", "carol") // bob left the broadcast channel

	if err := f.router.Route(context.Background(), "alice", "hello all"); err != nil {
		t.Fatal(err)
	}

	if got := f.bob.count(); got != 0 {
		t.Fatalf("bob received %d payloads, want 0", got)
	}
	if got := f.alice.count(); got != 2 {
		t.Fatalf("alice received %d payloads, want conversation and controls", got)
	}
}

func TestStoreFailureAbortsDelivery(t *testing.T) {
	f := newRouterFixture(t)
	f.store.appendErr = errors.New("mongo down")

	if err := f.router.Route(context.Background(), "alice", "hello"); err == nil {
		t.Fatal("Route returned nil, want error")
	}

	if f.alice.count() != 0 || f.bob.count() != 0 {
		t.Fatal("payloads were delivered despite a store failure")
	}

	// In-memory state must be intact.
	if got := f.registry.ConnectionsOf("alice"); len(got) != 1 {
		t.Fatalf("registry corrupted: %v", got)
	}
}

func TestUnknownSenderDoesNotFail(t *testing.T) {
	f := newRouterFixture(t)

	// A sender with no registered connections is an anomaly, not an error:
	// the message still lands in the broadcast channel for its viewers.
	if err := f.router.Route(context.Background(), "ghost", "boo"); err != nil {
		t.Fatal(err)
	}
	if got := f.bob.count(); got != 1 {
		t.Fatalf("bob received %d payloads, want the broadcast fragment", got)
	}
	msgs := f.store.appendedMessages()
	if len(msgs) != 1 || msgs[0].sender != "ghost" || msgs[0].key != BroadcastChannel {
		t.Fatalf("stored messages = %v", msgs)
	}
}
