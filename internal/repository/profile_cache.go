package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nutriboard-backend/internal/models"
)

// ProfileUpdatesChannel is the pub/sub channel announcing a refreshed profile.
func ProfileUpdatesChannel(userID string) string {
	return "profile_updates:" + userID
}

type ProfileCache struct {
	redis *redis.Client
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{redis: client}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

// GetProfile returns ErrNotFound on a cache miss.
func (c *ProfileCache) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	raw, err := c.redis.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cached profile: %w", err)
	}

	var p models.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &p, nil
}

func (c *ProfileCache) SetProfile(ctx context.Context, p *models.UserProfile, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, profileKey(p.ID), data, ttl).Err()
}

func (c *ProfileCache) PublishProfileUpdate(ctx context.Context, userID string) error {
	payload, _ := json.Marshal(map[string]string{
		"type":    "profile_updated",
		"user_id": userID,
	})
	return c.redis.Publish(ctx, ProfileUpdatesChannel(userID), payload).Err()
}
