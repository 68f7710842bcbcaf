package handlers

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlegall/tabletop-sync/internal/dice"
)

// RollRequest is the request body for the REST roll endpoint.
type RollRequest struct {
	Command string `json:"command" binding:"required"`
}

// RollDice parses and evaluates a dice command over REST. The websocket
// dice:roll event is the synchronized twin of this endpoint.
func RollDice(limits dice.Limits) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dice command is required"})
			return
		}

		expr, err := dice.ParseWithLimits(req.Command, limits)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": dice.UserMessage(err)})
			return
		}

		c.JSON(http.StatusOK, dice.Roll(expr, rand.Float64))
	}
}
