package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mlegall/tabletop-sync/internal/middleware"
	"github.com/mlegall/tabletop-sync/internal/models"
	"github.com/mlegall/tabletop-sync/internal/store"
)

// CharacterRequest is the request body for creating or updating a
// character sheet.
type CharacterRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Health     int    `json:"health" binding:"omitempty,min=0"`
	Mana       int    `json:"mana" binding:"omitempty,min=0"`
	ImageURL   string `json:"imageUrl"`
	CampaignID string `json:"campaignId"`
}

// ListCharacters returns the character sheets of a campaign (public).
func ListCharacters(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.DefaultQuery("campaignId", "default")

		characters, err := db.ListCharacters(campaignID)
		if err != nil {
			log.Printf("Failed to list characters: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list characters"})
			return
		}
		c.JSON(http.StatusOK, characters)
	}
}

// CreateCharacter creates a character sheet owned by the caller. The game
// master uses the same endpoint for NPC sheets.
func CreateCharacter(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req CharacterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.CampaignID == "" {
			req.CampaignID = "default"
		}

		character := &store.Character{
			ID:         uuid.New().String(),
			Name:       req.Name,
			Health:     req.Health,
			Mana:       req.Mana,
			ImageURL:   req.ImageURL,
			OwnerID:    actor.ID,
			CampaignID: req.CampaignID,
		}
		if err := db.CreateCharacter(character); err != nil {
			log.Printf("Failed to create character: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create character"})
			return
		}

		c.JSON(http.StatusCreated, character)
	}
}

// UpdateCharacter edits a character sheet. Only the owner or the game
// master may write, so players cannot tamper with each other's sheets.
func UpdateCharacter(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		character, err := db.FindCharacter(c.Param("characterId"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
				return
			}
			log.Printf("Failed to find character: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update character"})
			return
		}

		if !canEditCharacter(character, actor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner or the game master can edit this character"})
			return
		}

		var req CharacterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		character.Name = req.Name
		character.Health = req.Health
		character.Mana = req.Mana
		character.ImageURL = req.ImageURL
		if err := db.UpdateCharacter(character); err != nil {
			log.Printf("Failed to update character: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update character"})
			return
		}

		c.JSON(http.StatusOK, character)
	}
}

func canEditCharacter(character *store.Character, actor models.Actor) bool {
	return character.OwnerID == actor.ID || actor.IsGameMaster()
}
