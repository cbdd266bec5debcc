// Package hub partitions connections into named rooms through the
// RoomRegistry type.
package hub

import "sync"

type room struct {
	id      string
	name    string
	members []*Client // join order, preserved for presence enumeration
}

// RoomRegistry tracks which connections belong to which room. Rooms are
// created on first join and deleted the moment the last member leaves; a
// room with zero members never exists. Membership links are non-owning: the
// connection itself stays owned by the Registry.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*room
	order []string // room ids in creation order, for deterministic listing
}

// NewRoomRegistry returns an empty room registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*room)}
}

// Join appends c to the room identified by roomID, creating the room first
// if it does not exist. roomName only matters on creation; when empty, the
// name defaults to the id. The caller must ensure c is not currently in a
// room. Returns the member snapshot after the join.
func (rr *RoomRegistry) Join(c *Client, roomID, roomName string) []*Client {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rm, ok := rr.rooms[roomID]
	if !ok {
		if roomName == "" {
			roomName = roomID
		}
		rm = &room{id: roomID, name: roomName}
		rr.rooms[roomID] = rm
		rr.order = append(rr.order, roomID)
	}
	rm.members = append(rm.members, c)
	c.room = roomID

	return append([]*Client(nil), rm.members...)
}

// Leave removes c from its current room, if any. The room is deleted once
// empty. Returns the room id, the remaining members, and whether a departure
// notice is owed (true only while the room still has members).
func (rr *RoomRegistry) Leave(c *Client) (roomID string, remaining []*Client, notify bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	roomID = c.room
	if roomID == "" {
		return "", nil, false
	}
	c.room = ""

	rm, ok := rr.rooms[roomID]
	if !ok {
		return roomID, nil, false
	}

	for i, member := range rm.members {
		if member == c {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			break
		}
	}

	if len(rm.members) == 0 {
		rr.delete(roomID)
		return roomID, nil, false
	}

	return roomID, append([]*Client(nil), rm.members...), true
}

// delete removes a room from the table and the creation-order index.
// Callers must hold the write lock.
func (rr *RoomRegistry) delete(roomID string) {
	delete(rr.rooms, roomID)
	for i, id := range rr.order {
		if id == roomID {
			rr.order = append(rr.order[:i], rr.order[i+1:]...)
			break
		}
	}
}

// ListRooms returns a snapshot of every live room in creation order.
func (rr *RoomRegistry) ListRooms() []RoomInfo {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	rooms := make([]RoomInfo, 0, len(rr.order))
	for _, id := range rr.order {
		rm := rr.rooms[id]
		rooms = append(rooms, RoomInfo{ID: rm.id, Name: rm.name, PlayerCount: len(rm.members)})
	}
	return rooms
}

// MembersOf returns the presence list for a room in join order. An unknown
// room id yields an empty list, not an error.
func (rr *RoomRegistry) MembersOf(roomID string) []Player {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	rm, ok := rr.rooms[roomID]
	if !ok {
		return nil
	}
	players := make([]Player, 0, len(rm.members))
	for _, member := range rm.members {
		players = append(players, Player{Name: member.name, Avatar: member.avatar})
	}
	return players
}

// Members returns the connections currently in a room, in join order. An
// unknown room id yields an empty audience.
func (rr *RoomRegistry) Members(roomID string) []*Client {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	rm, ok := rr.rooms[roomID]
	if !ok {
		return nil
	}
	return append([]*Client(nil), rm.members...)
}

// Count reports the number of live rooms.
func (rr *RoomRegistry) Count() int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.rooms)
}
