// Package cache provides an optional redis read-through cache for user
// records. Every request loads the acting user, so a short-lived cache keeps
// the hot path off the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"twinflame-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const userTTL = 5 * time.Minute

// ErrMiss is returned when the key is not cached.
var ErrMiss = errors.New("cache miss")

// UserCache caches user records keyed by identity subject.
type UserCache struct {
	client *redis.Client
}

// NewUserCache creates a cache backed by the given redis client.
func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client}
}

// Get retrieves a cached user by subject. Returns ErrMiss when absent.
func (c *UserCache) Get(ctx context.Context, uid string) (*models.User, error) {
	data, err := c.client.Get(ctx, key(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read user cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	return &user, nil
}

// Set stores a user record with the cache TTL.
func (c *UserCache) Set(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return c.client.Set(ctx, key(user.UID), data, userTTL).Err()
}

// Invalidate drops the cached record for a subject.
func (c *UserCache) Invalidate(ctx context.Context, uid string) error {
	return c.client.Del(ctx, key(uid)).Err()
}

// Ping checks redis connectivity for the health endpoint.
func (c *UserCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func key(uid string) string {
	return "user:" + uid + ":record"
}
