// Package hub decodes inbound envelopes and dispatches them to the matching
// handler.
package hub

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

type inboundMessage struct {
	sender  *Client
	payload []byte
}

type handlerFunc func(h *Hub, sender *Client, env *Envelope, raw []byte)

// routes is the closed dispatch table. Anything outside this set is dropped
// so unknown future message types cannot crash the hub.
func routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		TypeStroke:   handleStroke,
		TypeClear:    handleRelay,
		TypeUndo:     handleRelay,
		TypeGetRooms: handleGetRooms,
		TypeJoin:     handleJoin,
		TypeChat:     handleChat,
		TypeEmoji:    handleEmoji,
	}
}

// route decodes one inbound frame and dispatches it. Undecodable payloads
// and unknown types are discarded with a log line and no reply; silence
// avoids amplifying noise from a misbehaving peer.
func (h *Hub) route(sender *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Discarding undecodable message from %s: %v", sender.addr, err)
		dropped(h.name, dropMalformed)
		return
	}

	handler, ok := h.routes[env.Type]
	if !ok {
		log.Printf("Discarding message with unknown type %q from %s", env.Type, sender.addr)
		dropped(h.name, dropUnknownType)
		return
	}

	handler(h, sender, &env, raw)
}

// handleStroke validates the stroke record and mirrors the original bytes to
// everyone but the sender, who already applied the stroke locally.
func handleStroke(h *Hub, sender *Client, env *Envelope, raw []byte) {
	var stroke StrokePayload
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &stroke) != nil || len(stroke.Points) == 0 {
		log.Printf("Discarding stroke without points from %s", sender.addr)
		dropped(h.name, dropMalformed)
		return
	}

	relayed(h.name, env.Type)
	h.broadcastAll(raw, sender)
}

// handleRelay mirrors clear and undo verbatim, sender excluded.
func handleRelay(h *Hub, sender *Client, env *Envelope, raw []byte) {
	relayed(h.name, env.Type)
	h.broadcastAll(raw, sender)
}

// handleGetRooms answers the sender, and only the sender, with the current
// room list.
func handleGetRooms(h *Hub, sender *Client, env *Envelope, _ []byte) {
	payload, err := json.Marshal(roomListMessage{Type: TypeRoomList, Rooms: h.rooms.ListRooms()})
	if err != nil {
		log.Printf("Error encoding room list: %v", err)
		return
	}

	relayed(h.name, env.Type)
	h.sendTo(sender, payload)
}

// handleJoin creates or joins a room and announces the arrival to its
// members, the joiner included. A connection already in another room leaves
// it first, with the usual departure notice; an omitted roomId asks the hub
// to mint a fresh one.
func handleJoin(h *Hub, sender *Client, env *Envelope, _ []byte) {
	if env.PlayerName == "" || env.PlayerAvatar == "" {
		log.Printf("Discarding join without player profile from %s", sender.addr)
		dropped(h.name, dropMalformed)
		return
	}

	h.leaveRoom(sender)
	h.registry.SetProfile(sender, env.PlayerName, env.PlayerAvatar)

	roomID := env.RoomID
	if roomID == "" {
		roomID = uuid.NewString()
	}
	members := h.rooms.Join(sender, roomID, env.RoomName)

	payload, err := json.Marshal(systemMessage{
		Type:    TypeSystem,
		Text:    env.PlayerName + " joined",
		Players: h.rooms.MembersOf(roomID),
	})
	if err != nil {
		log.Printf("Error encoding join notice: %v", err)
		return
	}

	relayed(h.name, env.Type)
	h.broadcast(members, payload, nil)
	openRooms.WithLabelValues(h.name).Set(float64(h.rooms.Count()))
}

// handleChat broadcasts a chat line to the sender's room, sender included.
// A chat from a connection in no room has an empty audience and is dropped.
func handleChat(h *Hub, sender *Client, env *Envelope, _ []byte) {
	if env.Message == "" {
		log.Printf("Discarding chat without message from %s", sender.addr)
		dropped(h.name, dropMalformed)
		return
	}
	if sender.room == "" {
		log.Printf("Discarding chat from %s: not in a room", sender.addr)
		dropped(h.name, dropNoRoom)
		return
	}

	payload, err := json.Marshal(chatMessage{Type: TypeChat, From: sender.name, Message: env.Message})
	if err != nil {
		log.Printf("Error encoding chat message: %v", err)
		return
	}

	relayed(h.name, env.Type)
	h.broadcastRoom(sender.room, payload, nil)
}

// handleEmoji broadcasts a reaction to the sender's room, sender included.
func handleEmoji(h *Hub, sender *Client, env *Envelope, _ []byte) {
	if env.Emoji == "" {
		log.Printf("Discarding emoji without payload from %s", sender.addr)
		dropped(h.name, dropMalformed)
		return
	}
	if sender.room == "" {
		log.Printf("Discarding emoji from %s: not in a room", sender.addr)
		dropped(h.name, dropNoRoom)
		return
	}

	payload, err := json.Marshal(emojiFlashMessage{Type: TypeEmojiFlash, PlayerName: sender.name, Emoji: env.Emoji})
	if err != nil {
		log.Printf("Error encoding emoji flash: %v", err)
		return
	}

	relayed(h.name, env.Type)
	h.broadcastRoom(sender.room, payload, nil)
}
