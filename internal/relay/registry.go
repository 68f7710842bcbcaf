package relay

import "sync"

// DefaultRoomID receives events from connections that never sent an
// explicit join, so clients that skip the join step still reach a shared
// audience.
const DefaultRoomID = "default"

// Registry tracks which connections belong to which room. Rooms are
// created implicitly on first join and garbage-collected when the last
// member leaves. The registry is owned by the Hub; nothing else mutates
// membership.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]*Client)}
}

// Join places the client in roomID, moving it out of its previous room if
// it had one. It returns the previous room id and whether membership
// actually changed; joining the current room is a no-op.
func (r *Registry) Join(c *Client, roomID string) (previous string, moved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous = c.RoomID
	if previous == roomID {
		return previous, false
	}
	if previous != "" {
		r.remove(previous, c.ID)
	}

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]*Client)
		r.rooms[roomID] = room
	}
	room[c.ID] = c
	c.RoomID = roomID
	return previous, true
}

// Leave removes the client from whichever room it was in. It returns the
// room id the client left, or "" if it was not a member of any room.
func (r *Registry) Leave(c *Client) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID := c.RoomID
	if roomID == "" {
		return ""
	}
	r.remove(roomID, c.ID)
	c.RoomID = ""
	return roomID
}

// Members returns a snapshot of the room's clients. The snapshot is safe
// to iterate without holding the registry lock.
func (r *Registry) Members(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	members := make([]*Client, 0, len(room))
	for _, c := range room {
		members = append(members, c)
	}
	return members
}

// RoomCount reports how many rooms currently have members.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// remove must be called with the lock held.
func (r *Registry) remove(roomID, clientID string) {
	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(room, clientID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
}
