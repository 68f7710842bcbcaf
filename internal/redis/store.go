package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mlegall/tabletop-sync/config"
	"github.com/mlegall/tabletop-sync/internal/models"
)

const (
	codeLength  = 6
	campaignTTL = 24 * time.Hour
)

// Store keeps campaign metadata and live presence in redis.
//
// Key scheme: "campaign:<id>" holds the metadata JSON, "code:<code>" maps
// a join code back to the campaign id, and "campaign:<id>:peers" is the
// set of currently connected peer ids.
type Store struct {
	client *redis.Client
	ctx    context.Context
}

// Connect initializes the redis client and verifies the connection.
func Connect(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, ctx: ctx}, nil
}

// Close closes the redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// SaveCampaign stores campaign metadata and its code-to-id mapping.
func (s *Store) SaveCampaign(campaign models.CampaignMetadata) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}
	if err := s.client.Set(s.ctx, "campaign:"+campaign.ID, data, campaignTTL).Err(); err != nil {
		return fmt.Errorf("failed to store campaign: %w", err)
	}
	if err := s.client.Set(s.ctx, "code:"+campaign.Code, campaign.ID, campaignTTL).Err(); err != nil {
		return fmt.Errorf("failed to store campaign code: %w", err)
	}
	return nil
}

// ResolveID turns a campaign id or join code into the campaign id.
func (s *Store) ResolveID(identifier string) (string, error) {
	if len(identifier) != codeLength {
		return identifier, nil
	}
	id, err := s.client.Get(s.ctx, "code:"+identifier).Result()
	if err != nil {
		return "", fmt.Errorf("campaign not found")
	}
	return id, nil
}

// GetCampaign fetches campaign metadata by id or join code, with the live
// player count filled in from the presence set.
func (s *Store) GetCampaign(identifier string) (*models.CampaignMetadata, error) {
	id, err := s.ResolveID(identifier)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(s.ctx, "campaign:"+id).Result()
	if err != nil {
		return nil, fmt.Errorf("campaign not found")
	}

	var campaign models.CampaignMetadata
	if err := json.Unmarshal([]byte(data), &campaign); err != nil {
		return nil, fmt.Errorf("failed to parse campaign data: %w", err)
	}

	count, _ := s.client.SCard(s.ctx, "campaign:"+id+":peers").Result()
	campaign.PlayerCount = int(count)

	return &campaign, nil
}

// DeleteCampaign removes the campaign, its code mapping and presence set.
func (s *Store) DeleteCampaign(campaign models.CampaignMetadata) {
	s.client.Del(s.ctx, "campaign:"+campaign.ID)
	s.client.Del(s.ctx, "code:"+campaign.Code)
	s.client.Del(s.ctx, "campaign:"+campaign.ID+":peers")
}

// PeerJoined records a live connection in the campaign's presence set.
// Implements relay.Presence.
func (s *Store) PeerJoined(roomID, peerID string) {
	if err := s.client.SAdd(s.ctx, "campaign:"+roomID+":peers", peerID).Err(); err != nil {
		log.Printf("Failed to record peer %s in campaign %s: %v", peerID, roomID, err)
		return
	}
	s.client.Expire(s.ctx, "campaign:"+roomID+":peers", campaignTTL)
}

// PeerLeft removes a connection from the campaign's presence set.
// Implements relay.Presence.
func (s *Store) PeerLeft(roomID, peerID string) {
	if err := s.client.SRem(s.ctx, "campaign:"+roomID+":peers", peerID).Err(); err != nil {
		log.Printf("Failed to remove peer %s from campaign %s: %v", peerID, roomID, err)
	}
}
