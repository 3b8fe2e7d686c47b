package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockTimeout is returned when an alias lock could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for server lock")

const (
	defaultLockTTL = 10 * time.Second
	lockWait       = 5 * time.Second
	lockRetryStep  = 50 * time.Millisecond
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SetLockTTL sets how long a held lock survives a crashed holder.
func (c *Client) SetLockTTL(ttl time.Duration) {
	if ttl > 0 {
		c.lockTTL = ttl
	}
}

// Lock acquires the per-alias mutation lock. The returned func releases it.
func (c *Client) Lock(ctx context.Context, alias string) (func(), error) {
	token := uuid.NewString()
	key := lockKey(alias)

	ctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	ticker := time.NewTicker(lockRetryStep)
	defer ticker.Stop()

	for {
		ok, err := c.rdb.SetNX(ctx, key, token, c.lockTTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}

	unlock := func() {
		err := releaseScript.Run(context.Background(), c.rdb, []string{key}, token).Err()
		if err != nil && err != redis.Nil {
			log.Warn().Err(err).Str("alias", alias).Msg("release server lock")
		}
	}
	return unlock, nil
}
