package hub

import (
	"encoding/json"
	"testing"
)

// registerTestClient creates a transport-less client and registers it
// directly, bypassing the event loop so routing tests stay deterministic.
func registerTestClient(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := newTestClient(t, h)
	h.registry.Register(c)
	return c
}

// recvEnvelope pops one queued payload from the client's send buffer and
// decodes it as loose JSON.
func recvEnvelope(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case payload := <-c.send:
		var decoded map[string]interface{}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("queued payload is not JSON: %v", err)
		}
		return decoded
	default:
		t.Fatal("expected a queued payload, send buffer is empty")
		return nil
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("expected no delivery, got %s", payload)
	default:
	}
}

func joinRoom(h *Hub, c *Client, roomID, name string) {
	env := Envelope{Type: TypeJoin, RoomID: roomID, PlayerName: name, PlayerAvatar: ":" + name + ":"}
	raw, _ := json.Marshal(env)
	h.route(c, raw)
}

func TestRouteDiscardsUndecodableMessage(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)
	other := registerTestClient(t, h)

	h.route(sender, []byte("{not json"))

	expectNothing(t, sender)
	expectNothing(t, other)
	if got := h.registry.Len(); got != 2 {
		t.Errorf("registry mutated by malformed input: %d clients", got)
	}
	if got := h.rooms.Count(); got != 0 {
		t.Errorf("room table mutated by malformed input: %d rooms", got)
	}
}

// TestRouteDiscardsUnknownType verifies forward compatibility: an
// unrecognized discriminator is dropped without disturbing anyone.
func TestRouteDiscardsUnknownType(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)
	other := registerTestClient(t, h)

	h.route(sender, []byte(`{"type":"teleport","data":{}}`))

	expectNothing(t, sender)
	expectNothing(t, other)
}

func TestStrokeRelayedVerbatimExcludingSender(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)
	other := registerTestClient(t, h)

	raw := []byte(`{"type":"stroke","data":{"points":[[1,2],[3,4]],"color":"#000000","size":16,"thinning":0.6,"smoothing":0.8,"streamline":0.5}}`)
	h.route(sender, raw)

	select {
	case payload := <-other.send:
		if string(payload) != string(raw) {
			t.Errorf("stroke not mirrored verbatim:\n got %s\nwant %s", payload, raw)
		}
	default:
		t.Fatal("other client did not receive the stroke")
	}
	expectNothing(t, sender)
}

func TestStrokeWithoutPointsDiscarded(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)
	other := registerTestClient(t, h)

	h.route(sender, []byte(`{"type":"stroke","data":{"points":[]}}`))
	h.route(sender, []byte(`{"type":"stroke"}`))

	expectNothing(t, other)
}

func TestClearAndUndoRelayedExcludingSender(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)
	other := registerTestClient(t, h)

	for _, raw := range []string{`{"type":"clear"}`, `{"type":"undo"}`} {
		h.route(sender, []byte(raw))

		select {
		case payload := <-other.send:
			if string(payload) != raw {
				t.Errorf("relay altered the payload: got %s want %s", payload, raw)
			}
		default:
			t.Fatalf("other client did not receive %s", raw)
		}
		expectNothing(t, sender)
	}
}

// TestGetRoomsRepliesToSenderOnly verifies that the room list goes back to
// the requester and nobody else.
func TestGetRoomsRepliesToSenderOnly(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)
	other := registerTestClient(t, h)
	joinRoom(h, other, "r1", "Bo")
	drainSend(other)

	h.route(sender, []byte(`{"type":"getRooms"}`))

	reply := recvEnvelope(t, sender)
	if reply["type"] != TypeRoomList {
		t.Fatalf("reply type = %v, want %s", reply["type"], TypeRoomList)
	}
	rooms, ok := reply["rooms"].([]interface{})
	if !ok || len(rooms) != 1 {
		t.Fatalf("unexpected rooms payload: %v", reply["rooms"])
	}
	entry := rooms[0].(map[string]interface{})
	if entry["id"] != "r1" || entry["playerCount"] != float64(1) {
		t.Errorf("unexpected room entry: %v", entry)
	}
	expectNothing(t, other)
}

func drainSend(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestJoinBroadcastsSystemWithPresence(t *testing.T) {
	h := NewHub("test")
	ann := registerTestClient(t, h)
	bo := registerTestClient(t, h)

	joinRoom(h, ann, "r1", "Ann")

	notice := recvEnvelope(t, ann)
	if notice["type"] != TypeSystem || notice["text"] != "Ann joined" {
		t.Fatalf("unexpected join notice: %v", notice)
	}

	joinRoom(h, bo, "r1", "Bo")

	// Both members see Bo's arrival with the updated presence list.
	for _, c := range []*Client{ann, bo} {
		notice := recvEnvelope(t, c)
		if notice["text"] != "Bo joined" {
			t.Fatalf("unexpected notice: %v", notice)
		}
		players := notice["players"].([]interface{})
		if len(players) != 2 {
			t.Fatalf("expected 2 players, got %v", players)
		}
		first := players[0].(map[string]interface{})
		if first["name"] != "Ann" {
			t.Errorf("presence order broken: %v", players)
		}
	}
}

func TestJoinWithoutProfileDiscarded(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)

	h.route(sender, []byte(`{"type":"join","roomId":"r1"}`))

	expectNothing(t, sender)
	if got := h.rooms.Count(); got != 0 {
		t.Errorf("malformed join created %d rooms", got)
	}
}

func TestJoinWithoutRoomIDMintsOne(t *testing.T) {
	h := NewHub("test")
	sender := registerTestClient(t, h)

	h.route(sender, []byte(`{"type":"join","playerName":"Ann","playerAvatar":":cat:"}`))

	list := h.rooms.ListRooms()
	if len(list) != 1 {
		t.Fatalf("expected 1 room, got %d", len(list))
	}
	if list[0].ID == "" {
		t.Error("expected a generated room id")
	}
}

// TestRejoinImpliesLeave verifies the documented join-while-joined contract:
// the connection implicitly leaves its current room, whose remaining members
// get the usual departure notice.
func TestRejoinImpliesLeave(t *testing.T) {
	h := NewHub("test")
	ann := registerTestClient(t, h)
	bo := registerTestClient(t, h)
	joinRoom(h, ann, "r1", "Ann")
	joinRoom(h, bo, "r1", "Bo")
	drainSend(ann)
	drainSend(bo)

	joinRoom(h, ann, "r2", "Ann")

	departure := recvEnvelope(t, bo)
	if departure["type"] != TypeSystem || departure["text"] != "Ann left" {
		t.Fatalf("old room missed the departure notice: %v", departure)
	}
	arrival := recvEnvelope(t, ann)
	if arrival["text"] != "Ann joined" {
		t.Fatalf("new room missed the join notice: %v", arrival)
	}

	list := h.rooms.ListRooms()
	if len(list) != 2 {
		t.Fatalf("expected r1 and r2, got %+v", list)
	}
}

func TestChatScopedToRoom(t *testing.T) {
	h := NewHub("test")
	ann := registerTestClient(t, h)
	bo := registerTestClient(t, h)
	outsider := registerTestClient(t, h)
	joinRoom(h, ann, "r1", "Ann")
	joinRoom(h, bo, "r1", "Bo")
	joinRoom(h, outsider, "r2", "Cy")
	drainSend(ann)
	drainSend(bo)
	drainSend(outsider)

	h.route(ann, []byte(`{"type":"chat","message":"hello room"}`))

	// Chat includes the sender.
	for _, c := range []*Client{ann, bo} {
		msg := recvEnvelope(t, c)
		if msg["type"] != TypeChat || msg["from"] != "Ann" || msg["message"] != "hello room" {
			t.Errorf("unexpected chat delivery: %v", msg)
		}
	}
	expectNothing(t, outsider)
}

func TestChatMissingMessageDiscarded(t *testing.T) {
	h := NewHub("test")
	ann := registerTestClient(t, h)
	bo := registerTestClient(t, h)
	joinRoom(h, ann, "r1", "Ann")
	joinRoom(h, bo, "r1", "Bo")
	drainSend(ann)
	drainSend(bo)

	h.route(ann, []byte(`{"type":"chat"}`))

	expectNothing(t, ann)
	expectNothing(t, bo)
}

func TestChatFromUnjoinedConnectionDiscarded(t *testing.T) {
	h := NewHub("test")
	loner := registerTestClient(t, h)

	h.route(loner, []byte(`{"type":"chat","message":"anyone?"}`))

	expectNothing(t, loner)
}

func TestEmojiFlashIncludesSender(t *testing.T) {
	h := NewHub("test")
	ann := registerTestClient(t, h)
	bo := registerTestClient(t, h)
	joinRoom(h, ann, "r1", "Ann")
	joinRoom(h, bo, "r1", "Bo")
	drainSend(ann)
	drainSend(bo)

	h.route(ann, []byte(`{"type":"emoji","emoji":"🎉"}`))

	for _, c := range []*Client{ann, bo} {
		msg := recvEnvelope(t, c)
		if msg["type"] != TypeEmojiFlash || msg["playerName"] != "Ann" || msg["emoji"] != "🎉" {
			t.Errorf("unexpected emoji flash: %v", msg)
		}
	}
}

// TestRoomLifecycleScenario walks the end-to-end room scenario: three
// members, a reaction, a disconnect, and the resulting presence update.
func TestRoomLifecycleScenario(t *testing.T) {
	h := NewHub("test")
	ann := registerTestClient(t, h)
	bo := registerTestClient(t, h)
	cy := registerTestClient(t, h)
	joinRoom(h, ann, "r1", "Ann")
	joinRoom(h, bo, "r1", "Bo")
	joinRoom(h, cy, "r1", "Cy")
	drainSend(ann)
	drainSend(bo)
	drainSend(cy)

	h.route(ann, []byte(`{"type":"emoji","emoji":"🎉"}`))
	for _, c := range []*Client{ann, bo, cy} {
		msg := recvEnvelope(t, c)
		if msg["playerName"] != "Ann" || msg["emoji"] != "🎉" {
			t.Fatalf("unexpected emoji delivery: %v", msg)
		}
	}

	h.disconnect(bo)

	list := h.rooms.ListRooms()
	if len(list) != 1 || list[0].PlayerCount != 2 {
		t.Fatalf("expected r1 with 2 players, got %+v", list)
	}

	for _, c := range []*Client{ann, cy} {
		notice := recvEnvelope(t, c)
		if notice["type"] != TypeSystem || notice["text"] != "Bo left" {
			t.Fatalf("unexpected departure notice: %v", notice)
		}
		players := notice["players"].([]interface{})
		if len(players) != 2 {
			t.Fatalf("expected presence {Ann, Cy}, got %v", players)
		}
		names := []string{
			players[0].(map[string]interface{})["name"].(string),
			players[1].(map[string]interface{})["name"].(string),
		}
		if names[0] != "Ann" || names[1] != "Cy" {
			t.Errorf("unexpected presence list: %v", names)
		}
	}
}
