package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coin-rewards-backend/internal/features/wallet/models"

	"github.com/redis/go-redis/v9"
)

// ProfileCache provides Redis-based caching for user profiles served by
// GET /me. The ledger in postgres stays the record of truth; entries are
// short-lived and invalidated on every balance mutation.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) key(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// Get returns the cached profile or redis.Nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*models.Profile, error) {
	b, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProfileCache) Set(ctx context.Context, p *models.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(p.ID), b, c.ttl).Err()
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

// IsMiss reports whether err is a cache miss rather than a Redis failure.
func IsMiss(err error) bool {
	return err == redis.Nil
}
