package relay

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mlegall/tabletop-sync/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client represents one live connection tagged with its room and actor
// identity. The Hub never writes to the socket directly; everything goes
// through the buffered Send channel so a slow consumer cannot stall the
// relay.
type Client struct {
	ID     string
	RoomID string
	Actor  models.Actor
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient wraps a websocket connection. Conn may be nil in tests; only
// the pumps touch it.
func NewClient(id string, actor models.Actor, conn *websocket.Conn) *Client {
	return &Client{
		ID:    id,
		Actor: actor,
		Conn:  conn,
		Send:  make(chan []byte, 256),
	}
}

// queue hands a frame to the write pump without blocking. Frames to a
// client with a full buffer are dropped; the relay is best-effort.
func (c *Client) queue(data []byte) {
	select {
	case c.Send <- data:
	default:
		log.Printf("Dropping frame for client %s, buffer full", c.ID)
	}
}

// ReadPump reads frames from the socket and hands them to the hub until
// the connection dies, then detaches the client.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Disconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		hub.Dispatch(c, message)
	}
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
