package chat

import "testing"

func TestRegisterUnregister(t *testing.T) {
	reg := NewRegistry()
	h := &fakeSender{}

	reg.Register("c1", h, "alice")
	if got := reg.ConnectionsOf("alice"); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("ConnectionsOf(alice) = %v, want [c1]", got)
	}

	reg.Unregister("c1", "alice")
	if got := reg.ConnectionsOf("alice"); len(got) != 0 {
		t.Fatalf("ConnectionsOf(alice) after unregister = %v, want empty", got)
	}

	// A duplicate close notification must be a no-op.
	reg.Unregister("c1", "alice")
	if got := reg.ConnectionsOf("alice"); len(got) != 0 {
		t.Fatalf("ConnectionsOf(alice) after double unregister = %v, want empty", got)
	}
}

func TestConnectionsOfUnknownUser(t *testing.T) {
	reg := NewRegistry()
	if got := reg.ConnectionsOf("nobody"); got == nil || len(got) != 0 {
		t.Fatalf("ConnectionsOf(nobody) = %v, want empty slice", got)
	}
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1", &fakeSender{}, "alice")
	reg.Register("c2", &fakeSender{}, "alice")

	if got := reg.ConnectionsOf("alice"); len(got) != 2 {
		t.Fatalf("ConnectionsOf(alice) = %v, want two ids", got)
	}

	reg.Unregister("c1", "alice")
	if got := reg.ConnectionsOf("alice"); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("ConnectionsOf(alice) = %v, want [c2]", got)
	}
}

func TestBroadcastToSurvivesDeadConnections(t *testing.T) {
	reg := NewRegistry()
	dead := &fakeSender{fail: true}
	alive := &fakeSender{}
	reg.Register("c1", dead, "alice")
	reg.Register("c2", alive, "bob")

	reg.BroadcastTo([]string{"c1", "gone", "c2"}, []byte("hello"))

	if alive.count() != 1 {
		t.Fatalf("live connection received %d payloads, want 1", alive.count())
	}
}

func TestUsers(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1", &fakeSender{}, "bob")
	reg.Register("c2", &fakeSender{}, "alice")
	reg.Register("c3", &fakeSender{}, "alice")

	got := reg.Users()
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("Users() = %v, want [alice bob]", got)
	}

	reg.Unregister("c2", "alice")
	reg.Unregister("c3", "alice")
	if got := reg.Users(); len(got) != 1 || got[0] != "bob" {
		t.Fatalf("Users() = %v, want [bob]", got)
	}
}
