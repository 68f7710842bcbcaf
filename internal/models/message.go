package models

import "encoding/json"

// EventType discriminates messages on the session channel.
type EventType string

const (
	EventJoin       EventType = "join"
	EventTokenMove  EventType = "token:move"
	EventMapUpdate  EventType = "map:update"
	EventDiceRoll   EventType = "dice:roll"
	EventDiceResult EventType = "dice:result"
	EventDiceError  EventType = "dice:error"
	EventPeerJoin   EventType = "peer:join"
	EventPeerLeave  EventType = "peer:leave"
)

// Message is the envelope for every event on the session channel. Payload
// stays raw: the relay does not interpret token or map payloads beyond the
// minimum needed for authorization.
type Message struct {
	Type    EventType       `json:"type"`
	From    string          `json:"from,omitempty"`
	Actor   string          `json:"actor,omitempty"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Role separates the game master from regular players.
type Role string

const (
	RoleGameMaster Role = "gm"
	RolePlayer     Role = "player"
)

// Actor is the authenticated identity attached to a connection.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsGameMaster reports whether the actor holds the elevated role.
func (a Actor) IsGameMaster() bool {
	return a.Role == RoleGameMaster
}

// TokenRef is the slice of a token-move payload the relay inspects: the
// token id (required) and its declared owner, if any. Everything else in
// the payload is relayed untouched.
type TokenRef struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
}

// DiceBroadcast is the payload of a dice:result event, sent to the whole
// room so every client renders the same server-computed roll.
type DiceBroadcast struct {
	Expression string      `json:"expression"`
	Result     interface{} `json:"result"`
	ActorName  string      `json:"actorName"`
}
