package i

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by LayoutCache.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// LayoutCache stores encoded maze layouts shared between server instances.
type LayoutCache interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Lock takes an exclusive lock on key so that only one caller builds a
	// missing value. The returned function releases it.
	Lock(ctx context.Context, key string) (func(), error)
}
