// cache/resolver.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidValue is returned when a fetched value fails the resolver's
// validator. Such values are never written to the store.
var ErrInvalidValue = errors.New("resolved value failed validation")

// FetchFunc loads a fresh value from the authority. It must return either
// a complete value or a typed error.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// ValidateFunc reports whether a value is structurally complete.
type ValidateFunc[T any] func(T) error

type Options struct {
	// Name labels metrics and log lines, e.g. "feature-flag".
	Name string
	// Coalesce collapses concurrent misses on one key into a single fetch.
	// Off by default: every miss performs its own fetch and write.
	Coalesce bool
	// RedactKey rewrites keys before they are logged. Nil logs them as is.
	RedactKey func(key string) string
}

// Resolver is a cache-aside lookup over a Store: hit returns the cached
// value, miss calls fetch, validates, stores with the caller's ttl.
//
// Store failures degrade to "always fetch"; they are logged and counted,
// never returned.
type Resolver[T any] struct {
	store    Store
	validate ValidateFunc[T]
	name     string
	group    *singleflight.Group
	redact   func(string) string
}

func NewResolver[T any](store Store, validate ValidateFunc[T], opts Options) *Resolver[T] {
	if store == nil {
		logger.Warn("No cache store configured, resolver running uncached", zap.String("resolver", opts.Name))
		store = NoopStore{}
	}
	if validate == nil {
		validate = func(T) error { return nil }
	}
	r := &Resolver[T]{
		store:    store,
		validate: validate,
		name:     opts.Name,
		redact:   opts.RedactKey,
	}
	if r.redact == nil {
		r.redact = func(key string) string { return key }
	}
	if opts.Coalesce {
		r.group = &singleflight.Group{}
	}
	return r
}

func (r *Resolver[T]) Resolve(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	if value, ok := r.lookup(ctx, key); ok {
		metrics.IncCacheHit(r.name)
		return value, nil
	}
	metrics.IncCacheMiss(r.name)

	if r.group == nil {
		return r.fetchAndStore(ctx, key, ttl, fetch)
	}

	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		return r.fetchAndStore(ctx, key, ttl, fetch)
	})
	if shared {
		logger.Debug("Coalesced cache miss", zap.String("resolver", r.name), zap.String("key", r.redact(key)))
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (r *Resolver[T]) lookup(ctx context.Context, key string) (T, bool) {
	var value T

	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		metrics.IncCacheError(r.name, "get")
		logger.Warn("Cache read failed, bypassing cache",
			zap.String("resolver", r.name),
			zap.String("key", r.redact(key)),
			zap.Error(err))
		return value, false
	}
	if !ok || raw == "" {
		return value, false
	}

	if err := json.UnmarshalFromString(raw, &value); err != nil {
		logger.Warn("Discarding undecodable cache entry",
			zap.String("resolver", r.name),
			zap.String("key", r.redact(key)),
			zap.Error(err))
		return value, false
	}
	if err := r.validate(value); err != nil {
		logger.Warn("Discarding invalid cache entry",
			zap.String("resolver", r.name),
			zap.String("key", r.redact(key)),
			zap.Error(err))
		return value, false
	}

	logger.Debug("Resolved from cache", zap.String("resolver", r.name), zap.String("key", r.redact(key)))
	return value, true
}

func (r *Resolver[T]) fetchAndStore(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := r.validate(value); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrInvalidValue, r.redact(key), err)
	}

	encoded, err := json.MarshalToString(value)
	if err != nil {
		metrics.IncCacheError(r.name, "encode")
		logger.Warn("Failed to encode value for cache", zap.String("resolver", r.name), zap.Error(err))
		return value, nil
	}
	if err := r.store.Set(ctx, key, encoded, ttl); err != nil {
		metrics.IncCacheError(r.name, "set")
		logger.Warn("Cache write failed, value served uncached",
			zap.String("resolver", r.name),
			zap.String("key", r.redact(key)),
			zap.Error(err))
		return value, nil
	}

	logger.Debug("Cached fresh value",
		zap.String("resolver", r.name),
		zap.String("key", r.redact(key)),
		zap.Duration("ttl", ttl))
	return value, nil
}
