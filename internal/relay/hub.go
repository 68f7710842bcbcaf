package relay

import (
	"encoding/json"
	"log"
	"math/rand"

	"github.com/mlegall/tabletop-sync/internal/dice"
	"github.com/mlegall/tabletop-sync/internal/models"
)

// Presence is notified when connections enter or leave a room, so room
// metadata elsewhere (redis player sets) can track live membership. Both
// callbacks are best-effort.
type Presence interface {
	PeerJoined(roomID, peerID string)
	PeerLeft(roomID, peerID string)
}

// Hub routes session events between the members of a room: token moves
// and map updates are relayed to the rest of the room, dice commands are
// evaluated server-side and the result broadcast to everyone.
//
// The hub holds no game state. Token and map payloads pass through
// opaque, and rooms live only as long as their membership.
type Hub struct {
	registry *Registry
	limits   dice.Limits
	random   dice.Source
	presence Presence
}

// NewHub builds a hub with its own registry. presence may be nil.
func NewHub(limits dice.Limits, presence Presence) *Hub {
	return &Hub{
		registry: NewRegistry(),
		limits:   limits,
		random:   rand.Float64,
		presence: presence,
	}
}

// SetRandomSource replaces the dice random source. Tests use this to make
// rolls deterministic.
func (h *Hub) SetRandomSource(source dice.Source) {
	h.random = source
}

// Registry exposes room membership, mainly for inspection.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Dispatch routes one inbound frame from a client. Malformed frames and
// unknown event types are dropped.
func (h *Hub) Dispatch(c *Client, raw []byte) {
	var msg models.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Failed to parse message from %s: %v", c.ID, err)
		return
	}

	switch msg.Type {
	case models.EventJoin:
		roomID := msg.RoomID
		if roomID == "" {
			roomID = DefaultRoomID
		}
		h.Join(c, roomID)
	case models.EventTokenMove:
		h.relayTokenMove(c, msg)
	case models.EventMapUpdate:
		h.relayToRoom(c, msg)
	case models.EventDiceRoll:
		h.rollDice(c, msg)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Join moves the client into roomID. Joining the room it is already in is
// a no-op; otherwise the old room (if any) is notified of the departure
// and the new room of the arrival. The client itself gets a join
// confirmation carrying the room id.
func (h *Hub) Join(c *Client, roomID string) {
	previous, moved := h.registry.Join(c, roomID)
	if !moved {
		return
	}

	if previous != "" {
		h.peerLeft(previous, c)
	}
	if h.presence != nil {
		h.presence.PeerJoined(roomID, c.ID)
	}

	h.send(c, models.Message{Type: models.EventJoin, From: c.ID, RoomID: roomID})
	h.broadcast(roomID, models.Message{
		Type:   models.EventPeerJoin,
		From:   c.ID,
		Actor:  c.Actor.Name,
		RoomID: roomID,
	}, c.ID)

	log.Printf("Client %s (%s) joined room %s", c.ID, c.Actor.Name, roomID)
}

// Disconnect detaches the client from its room and notifies the remaining
// members. Safe to call for clients that never joined.
func (h *Hub) Disconnect(c *Client) {
	roomID := h.registry.Leave(c)
	if roomID == "" {
		return
	}
	h.peerLeft(roomID, c)
	log.Printf("Client %s left room %s", c.ID, roomID)
}

func (h *Hub) peerLeft(roomID string, c *Client) {
	if h.presence != nil {
		h.presence.PeerLeft(roomID, c.ID)
	}
	h.broadcast(roomID, models.Message{
		Type:   models.EventPeerLeave,
		From:   c.ID,
		Actor:  c.Actor.Name,
		RoomID: roomID,
	}, c.ID)
}

// relayTokenMove forwards a token move to the rest of the room after the
// authorization check: the game master moves anything, a player only
// tokens declared as theirs. Unauthorized or id-less moves are dropped
// without an error reply, so a stale client cannot spam the room.
func (h *Hub) relayTokenMove(c *Client, msg models.Message) {
	var ref models.TokenRef
	if err := json.Unmarshal(msg.Payload, &ref); err != nil || ref.ID == "" {
		return
	}
	if !c.Actor.IsGameMaster() && (ref.OwnerID == "" || ref.OwnerID != c.Actor.ID) {
		log.Printf("Dropping unauthorized move of token %s by %s", ref.ID, c.ID)
		return
	}
	h.relayToRoom(c, msg)
}

// relayToRoom rebroadcasts the payload verbatim to every other member of
// the sender's room.
func (h *Hub) relayToRoom(c *Client, msg models.Message) {
	roomID := h.roomOf(c)
	msg.From = c.ID
	msg.Actor = c.Actor.Name
	msg.RoomID = roomID
	h.broadcast(roomID, msg, c.ID)
}

// rollDice evaluates a dice command. Parse failures go back to the sender
// only; a successful roll is broadcast to the whole room, sender
// included, so everyone renders the same server-computed result.
func (h *Hub) rollDice(c *Client, msg models.Message) {
	var expression string
	if err := json.Unmarshal(msg.Payload, &expression); err != nil {
		h.send(c, models.Message{Type: models.EventDiceError, Error: "dice command must be a string"})
		return
	}

	expr, err := dice.ParseWithLimits(expression, h.limits)
	if err != nil {
		h.send(c, models.Message{Type: models.EventDiceError, Error: dice.UserMessage(err)})
		return
	}

	result := dice.Roll(expr, h.random)
	payload, err := json.Marshal(models.DiceBroadcast{
		Expression: expression,
		Result:     result,
		ActorName:  c.Actor.Name,
	})
	if err != nil {
		log.Printf("Failed to marshal dice result: %v", err)
		return
	}

	roomID := h.roomOf(c)
	h.broadcast(roomID, models.Message{
		Type:    models.EventDiceResult,
		From:    c.ID,
		Actor:   c.Actor.Name,
		RoomID:  roomID,
		Payload: payload,
	}, "")
}

// roomOf returns the client's room, joining the default room first if the
// client emitted an event without ever joining.
func (h *Hub) roomOf(c *Client) string {
	if c.RoomID == "" {
		h.Join(c, DefaultRoomID)
	}
	return c.RoomID
}

// broadcast sends msg to every member of the room except excludeID. An
// empty excludeID reaches the whole room.
func (h *Hub) broadcast(roomID string, msg models.Message, excludeID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}
	for _, member := range h.registry.Members(roomID) {
		if member.ID == excludeID {
			continue
		}
		member.queue(data)
	}
}

// send delivers msg to a single client.
func (h *Hub) send(c *Client, msg models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}
	c.queue(data)
}
