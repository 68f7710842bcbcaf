package store

import (
	"time"

	"github.com/mlegall/tabletop-sync/internal/models"
)

// User is a registered account.
type User struct {
	ID           string      `gorm:"primarykey;size:36" json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Username     string      `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	Role         models.Role `gorm:"size:16;not null;default:player" json:"role"`
}

func (User) TableName() string {
	return "users"
}

// Character is a character sheet, owned by a player or (for NPCs) created
// by the game master.
type Character struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Health     int       `gorm:"not null;default:0" json:"health"`
	Mana       int       `gorm:"not null;default:0" json:"mana"`
	ImageURL   string    `gorm:"size:500" json:"imageUrl"`
	OwnerID    string    `gorm:"size:36;index" json:"ownerId"`
	CampaignID string    `gorm:"size:64;index;not null;default:default" json:"campaignId"`
}

func (Character) TableName() string {
	return "characters"
}

// Token is one piece on a map, positioned in viewport percentages.
type Token struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ImageURL string  `json:"imageUrl,omitempty"`
	OwnerID  string  `json:"ownerId,omitempty"` // empty for GM-controlled tokens
	Type     string  `json:"type,omitempty"`    // "player" or "enemy"
}

// GameMap is an uploaded battle map plus its saved token layout.
type GameMap struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	ImagePath  string    `gorm:"size:500;not null" json:"imagePath"`
	CampaignID string    `gorm:"size:64;index;not null;default:default" json:"campaignId"`
	CreatedBy  string    `gorm:"size:36" json:"createdBy"`
	Tokens     []Token   `gorm:"serializer:json" json:"tokens"`
}

func (GameMap) TableName() string {
	return "maps"
}
