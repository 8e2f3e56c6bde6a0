package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Cache is the key/value store behind the roster snapshot
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, pattern string) error
	Close() error
}

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "roster"

// Key joins parts under the roster namespace, skipping empty parts
func Key(parts ...string) string {
	kept := []string{keyPrefix}
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}
