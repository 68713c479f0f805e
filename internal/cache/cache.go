package cache

import (
	"context"
	"time"
)

// Cache is a best-effort JSON cache. The service treats every error as a
// miss and recomputes; correctness never depends on it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Noop is wired when no Redis address is configured.
type Noop struct{}

func (Noop) GetJSON(ctx context.Context, key string, dst any) (bool, error)            { return false, nil }
func (Noop) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error { return nil }
func (Noop) Del(ctx context.Context, keys ...string) error                             { return nil }
