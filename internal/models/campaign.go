package models

import "time"

// CampaignMetadata stores information about a campaign room
type CampaignMetadata struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"` // Short, shareable join code (e.g., "ABCD123")
	Name        string    `json:"name"`
	CreatorID   string    `json:"creatorId"` // User ID from JWT who created the campaign
	CreatedAt   time.Time `json:"createdAt"`
	MaxPlayers  int       `json:"maxPlayers"`
	PlayerCount int       `json:"playerCount"`
}

// CreateCampaignRequest is the request body for creating a campaign
type CreateCampaignRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers" binding:"omitempty,min=2,max=16"`
}

// CreateCampaignResponse is the response for creating a campaign
type CreateCampaignResponse struct {
	CampaignID string `json:"campaignId"`
	Code       string `json:"code"`
}
