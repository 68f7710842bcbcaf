package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mlegall/tabletop-sync/internal/middleware"
	"github.com/mlegall/tabletop-sync/internal/models"
	"github.com/mlegall/tabletop-sync/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// HandleSession upgrades the connection and attaches it to the relay.
// The session token rides in the "token" query parameter since browsers
// cannot set headers on websocket connects; connections without a valid
// token join as an anonymous player.
//
// Room membership is event-driven: the client sends a join event with its
// campaign id, and everything it emits before that lands in the default
// room.
func HandleSession(hub *relay.Hub, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := models.Actor{Name: "Anonymous", Role: models.RolePlayer}
		if tokenString := c.Query("token"); tokenString != "" {
			claims, err := middleware.ParseToken(jwtSecret, tokenString)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			actor = claims.Actor()
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		client := relay.NewClient(uuid.New().String(), actor, conn)
		log.Printf("Client %s connected as %s (%s)", client.ID, actor.Name, actor.Role)

		go client.WritePump()
		go client.ReadPump(hub)
	}
}
