package handlers

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mlegall/tabletop-sync/internal/middleware"
	"github.com/mlegall/tabletop-sync/internal/models"
	"github.com/mlegall/tabletop-sync/internal/redis"
)

const (
	codeLength        = 6
	codeChars         = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // Removed ambiguous chars
	defaultMaxPlayers = 8
)

// CampaignStore is the campaign metadata lifecycle the handlers need.
// *redis.Store is the production implementation.
type CampaignStore interface {
	SaveCampaign(campaign models.CampaignMetadata) error
	GetCampaign(identifier string) (*models.CampaignMetadata, error)
	DeleteCampaign(campaign models.CampaignMetadata)
}

var _ CampaignStore = (*redis.Store)(nil)

// CreateCampaign creates a new campaign room (requires authentication).
func CreateCampaign(campaigns CampaignStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req models.CreateCampaignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.MaxPlayers == 0 {
			req.MaxPlayers = defaultMaxPlayers
		}
		if req.Name == "" {
			req.Name = "New campaign"
		}

		code, err := generateJoinCode()
		if err != nil {
			log.Printf("Failed to generate join code: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
			return
		}

		campaign := models.CampaignMetadata{
			ID:         uuid.New().String(),
			Code:       code,
			Name:       req.Name,
			CreatorID:  actor.ID,
			CreatedAt:  time.Now(),
			MaxPlayers: req.MaxPlayers,
		}

		if err := campaigns.SaveCampaign(campaign); err != nil {
			log.Printf("Failed to store campaign: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
			return
		}

		log.Printf("Campaign created: %s (code: %s) by user %s", campaign.ID, campaign.Code, actor.ID)
		c.JSON(http.StatusCreated, models.CreateCampaignResponse{
			CampaignID: campaign.ID,
			Code:       campaign.Code,
		})
	}
}

// GetCampaign returns campaign metadata by id or join code (public).
func GetCampaign(campaigns CampaignStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaign, err := campaigns.GetCampaign(c.Param("campaignId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusOK, campaign)
	}
}

// DeleteCampaign removes a campaign (requires authentication, creator only).
func DeleteCampaign(campaigns CampaignStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		campaign, err := campaigns.GetCampaign(c.Param("campaignId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}

		if campaign.CreatorID != actor.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the campaign creator can delete it"})
			return
		}

		campaigns.DeleteCampaign(*campaign)
		log.Printf("Campaign deleted: %s by user %s", campaign.ID, actor.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted"})
	}
}

// generateJoinCode generates a random shareable campaign code.
func generateJoinCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to draw code character: %w", err)
		}
		code[i] = codeChars[n.Int64()]
	}
	return string(code), nil
}
