package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const announcedTTL = 30 * 24 * time.Hour

// markAnnouncedScript stores turn if it is newer than the recorded one.
// Returns 1 when the caller is the first to announce turn.
var markAnnouncedScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// MarkAnnounced records that turn has been announced for alias. It returns
// true only for the first caller per turn, across processes.
func (c *Client) MarkAnnounced(ctx context.Context, alias string, turn int) (bool, error) {
	n, err := markAnnouncedScript.Run(ctx, c.rdb, []string{announcedKey(alias)},
		strconv.Itoa(turn), announcedTTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("mark announced: %w", err)
	}
	return n == 1, nil
}

// ClearAnnounced forgets the announced turn for alias.
func (c *Client) ClearAnnounced(ctx context.Context, alias string) error {
	return c.rdb.Del(ctx, announcedKey(alias)).Err()
}
