package hub

import "testing"

func newTestClient(t *testing.T, h *Hub) *Client {
	t.Helper()
	return NewClient(nil, h, "127.0.0.1:0", ClientOptions{})
}

// TestRegisterAssignsIdentity verifies that every new client receives a
// fresh, non-empty identity that the participant never chooses.
func TestRegisterAssignsIdentity(t *testing.T) {
	h := NewHub("test")
	a := newTestClient(t, h)
	b := newTestClient(t, h)

	if a.ID() == "" || b.ID() == "" {
		t.Fatal("expected non-empty connection identities")
	}
	if a.ID() == b.ID() {
		t.Errorf("expected distinct identities, both got %q", a.ID())
	}
}

func TestRegistryRegisterAndSnapshot(t *testing.T) {
	h := NewHub("test")
	reg := h.registry

	a := newTestClient(t, h)
	b := newTestClient(t, h)
	reg.Register(a)
	reg.Register(b)

	if got := reg.Len(); got != 2 {
		t.Fatalf("expected 2 registered clients, got %d", got)
	}

	seen := make(map[*Client]bool)
	for _, c := range reg.Snapshot() {
		seen[c] = true
	}
	if !seen[a] || !seen[b] {
		t.Error("snapshot is missing a registered client")
	}
}

// TestUnregisterIsIdempotent verifies that unregistering an
// already-unregistered client is a no-op rather than an error or panic.
func TestUnregisterIsIdempotent(t *testing.T) {
	h := NewHub("test")
	reg := h.registry

	c := newTestClient(t, h)
	reg.Register(c)

	if !reg.Unregister(c) {
		t.Error("first Unregister should report removal")
	}
	if reg.Unregister(c) {
		t.Error("second Unregister should be a no-op")
	}
	if got := reg.Len(); got != 0 {
		t.Errorf("expected empty registry, got %d clients", got)
	}
}

func TestSetProfileDoesNotTouchMembership(t *testing.T) {
	h := NewHub("test")
	reg := h.registry

	c := newTestClient(t, h)
	reg.Register(c)
	reg.SetProfile(c, "Ann", ":cat:")

	if c.name != "Ann" || c.avatar != ":cat:" {
		t.Errorf("profile not applied: name=%q avatar=%q", c.name, c.avatar)
	}
	if c.room != "" {
		t.Errorf("SetProfile must not assign a room, got %q", c.room)
	}
	if got := reg.Len(); got != 1 {
		t.Errorf("expected 1 registered client, got %d", got)
	}
}

// TestSendToUnregisteredClient verifies that queueing a message for a
// retired client fails cleanly instead of panicking on the closed channel.
func TestSendToUnregisteredClient(t *testing.T) {
	h := NewHub("test")
	reg := h.registry

	c := newTestClient(t, h)
	reg.Register(c)
	reg.Unregister(c)

	if reg.Send(c, []byte("late")) {
		t.Error("Send to an unregistered client should fail")
	}
}

func TestSendQueuesPayload(t *testing.T) {
	h := NewHub("test")
	reg := h.registry

	c := newTestClient(t, h)
	reg.Register(c)

	if !reg.Send(c, []byte("hello")) {
		t.Fatal("Send to a registered client failed")
	}

	select {
	case payload := <-c.send:
		if string(payload) != "hello" {
			t.Errorf("queued payload = %q, want %q", payload, "hello")
		}
	default:
		t.Fatal("expected a queued payload")
	}
}

// TestSendDropsWhenBufferFull verifies the fire-and-forget policy: a full
// send buffer makes Send fail without blocking.
func TestSendDropsWhenBufferFull(t *testing.T) {
	h := NewHub("test")
	reg := h.registry

	c := NewClient(nil, h, "127.0.0.1:0", ClientOptions{SendBuffer: 1})
	reg.Register(c)

	if !reg.Send(c, []byte("first")) {
		t.Fatal("first Send should fill the buffer")
	}
	if reg.Send(c, []byte("second")) {
		t.Error("Send on a full buffer should fail instead of blocking")
	}
}
