package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const displayNameTTL = 24 * time.Hour

// GetName returns a cached display name for a Discord user.
func (c *Client) GetName(ctx context.Context, userID string) (string, bool, error) {
	name, err := c.rdb.Get(ctx, displayNameKey(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get display name: %w", err)
	}
	return name, true, nil
}

// SetName caches a display name for a Discord user.
func (c *Client) SetName(ctx context.Context, userID, name string) error {
	if err := c.rdb.Set(ctx, displayNameKey(userID), name, displayNameTTL).Err(); err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	return nil
}
