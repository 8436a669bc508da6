// cache/store.go

// Package cache holds the key/value stores used by the flag and signature
// resolvers and the generic cache-aside Resolver that both share.
package cache

import (
	"context"
	"time"
)

// Store is a string key/value store with per-key expiry.
//
// Get reports ok=false for a missing or expired key. A non-nil error means
// the store itself could not be reached; callers treat that as a miss.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// NoopStore never holds anything. It stands in for Redis when the
// connection could not be established, so every lookup goes to the
// authority.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (NoopStore) Set(context.Context, string, string, time.Duration) error {
	return nil
}
