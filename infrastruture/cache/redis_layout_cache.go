package cache

import (
	"context"
	"errors"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "beppo:layout:"
	lockSuffix = ":build_lock"
	lockExpiry = 10 * time.Second
)

var _ i.LayoutCache = &RedisLayoutCache{}

// RedisLayoutCache keeps encoded layouts in redis and guards their creation
// with a redsync mutex.
type RedisLayoutCache struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisLayoutCache initializes a RedisLayoutCache on top of client.
func NewRedisLayoutCache(client *redis.Client) *RedisLayoutCache {
	pool := goredis.NewPool(client)
	return &RedisLayoutCache{
		client: client,
		locker: redsync.New(pool),
	}
}

// Get implements i.LayoutCache.
func (c *RedisLayoutCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, i.ErrCacheMiss
	}
	return b, err
}

// Set implements i.LayoutCache.
func (c *RedisLayoutCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Lock implements i.LayoutCache.
func (c *RedisLayoutCache) Lock(ctx context.Context, key string) (func(), error) {
	mutex := c.locker.NewMutex(keyPrefix+key+lockSuffix, redsync.WithExpiry(lockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() {
		_, _ = mutex.Unlock()
	}, nil
}
