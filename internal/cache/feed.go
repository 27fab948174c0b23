package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"campuscare/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ApprovedFeedKey holds the JSON-encoded approved feed.
const ApprovedFeedKey = "forum:feed:approved"

// DefaultFeedTTL bounds staleness if an invalidation is ever missed.
const DefaultFeedTTL = 2 * time.Minute

// generationSuffix names the counter bumped on every invalidation of a key.
const generationSuffix = ":gen"

// storeIfCurrent writes KEYS[1] only while the generation counter KEYS[2]
// still equals ARGV[1], so a fill that raced an invalidation is dropped.
var storeIfCurrent = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if not current then current = "0" end
if current ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache is a thin JSON cache over Redis. A Cache with a nil client is a
// pass-through: lookups always miss and writes are dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache. client may be nil.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultFeedTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client backs the cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, c.ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate
// dest, and stores the result. The result is only stored if no Invalidate
// of key happened while fetch ran. Redis failures degrade to calling fetch.
func (c *Cache) Aside(ctx context.Context, key string, dest any, fetch func() error) error {
	if !c.Enabled() {
		return fetch()
	}
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed, falling back to store", "key", key, "err", err)
	}
	if found {
		observability.FeedCacheLookups.WithLabelValues("hit").Inc()
		return nil
	}
	observability.FeedCacheLookups.WithLabelValues("miss").Inc()

	// read before fetch: an invalidation committed after this point bumps it
	gen, genErr := c.generation(ctx, key)
	if genErr != nil {
		slog.WarnContext(ctx, "cache generation read failed", "key", key, "err", genErr)
	}

	if err := fetch(); err != nil {
		return err
	}
	if genErr != nil {
		return nil
	}

	stored, err := c.storeAt(ctx, key, gen, dest)
	if err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "err", err)
	} else if !stored {
		observability.FeedCacheLookups.WithLabelValues("stale").Inc()
		slog.DebugContext(ctx, "dropped cache fill that raced an invalidation", "key", key)
	}
	return nil
}

func (c *Cache) generation(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, key+generationSuffix).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *Cache) storeAt(ctx context.Context, key, gen string, v any) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	ttl := strconv.FormatInt(c.ttl.Milliseconds(), 10)
	n, err := storeIfCurrent.Run(ctx, c.client, []string{key, key + generationSuffix}, gen, string(b), ttl).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate bumps the generation of each key and deletes its value, so
// fills that started before the call are never stored. Redis errors are
// logged instead of returned.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, key+generationSuffix)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "keys", keys, "err", err)
	}
}

// InvalidateFeed drops the cached approved feed.
func (c *Cache) InvalidateFeed(ctx context.Context) {
	c.Invalidate(ctx, ApprovedFeedKey)
}
