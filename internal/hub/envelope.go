// Package hub defines the wire envelope shared by the drawing and room
// relay endpoints.
package hub

import "encoding/json"

// Inbound message types accepted by the router.
const (
	TypeStroke   = "stroke"
	TypeClear    = "clear"
	TypeUndo     = "undo"
	TypeGetRooms = "getRooms"
	TypeJoin     = "join"
	TypeChat     = "chat"
	TypeEmoji    = "emoji"
)

// Outbound message types produced by the hub itself.
const (
	TypeRoomList   = "roomList"
	TypeSystem     = "system"
	TypeEmojiFlash = "emojiFlash"
)

// Envelope is the JSON wire format for every client message. Only Type is
// universal; the remaining fields are populated per message type and
// validated by the matching handler.
type Envelope struct {
	Type         string          `json:"type"`
	Data         json.RawMessage `json:"data,omitempty"`
	RoomID       string          `json:"roomId,omitempty"`
	RoomName     string          `json:"roomName,omitempty"`
	PlayerName   string          `json:"playerName,omitempty"`
	PlayerAvatar string          `json:"playerAvatar,omitempty"`
	Message      string          `json:"message,omitempty"`
	Emoji        string          `json:"emoji,omitempty"`
}

// StrokePayload carries the part of a stroke record the router validates.
// Style parameters (color, size, thinning, smoothing, streamline) ride along
// in the raw bytes untouched; strokes are mirrored verbatim.
type StrokePayload struct {
	Points [][]float64 `json:"points"`
}

// RoomInfo is one entry of a roomList reply.
type RoomInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
}

// Player is a presence entry: the display metadata of one room member.
type Player struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type roomListMessage struct {
	Type  string     `json:"type"`
	Rooms []RoomInfo `json:"rooms"`
}

type systemMessage struct {
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Players []Player `json:"players"`
}

type chatMessage struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type emojiFlashMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
	Emoji      string `json:"emoji"`
}
