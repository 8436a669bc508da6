package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Value *bool  `json:"value"`
}

func validRecord(r record) error {
	if r.Value == nil {
		return errors.New("value is required")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// countingStore wraps a MemoryStore and can be switched into failure mode.
type countingStore struct {
	*MemoryStore
	gets, sets atomic.Int32
	failGet    bool
	failSet    bool
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore(16)}
}

func (s *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.gets.Add(1)
	if s.failGet {
		return "", false, errors.New("dial tcp: connection refused")
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.sets.Add(1)
	if s.failSet {
		return errors.New("dial tcp: connection refused")
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

type countingFetch struct {
	calls atomic.Int32
	value record
	err   error
}

func (f *countingFetch) fetch(ctx context.Context) (record, error) {
	f.calls.Add(1)
	return f.value, f.err
}

func TestResolverCacheHitSkipsFetch(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()
	require.NoError(t, store.MemoryStore.Set(ctx, "k", `{"name":"seeded","value":false}`, time.Minute))

	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}

	got, err := r.Resolve(ctx, "k", time.Minute, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "seeded", got.Name)
	assert.False(t, *got.Value)
	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, int32(0), store.sets.Load())
}

func TestResolverMissThenHit(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()
	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}

	got, err := r.Resolve(ctx, "k", time.Minute, f.fetch)
	require.NoError(t, err)
	assert.True(t, *got.Value)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, int32(1), store.sets.Load())

	got, err = r.Resolve(ctx, "k", time.Minute, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)
	assert.Equal(t, int32(1), f.calls.Load(), "second call must be served from cache")
	assert.Equal(t, int32(1), store.sets.Load())

	raw, ok, _ := store.MemoryStore.Get(ctx, "k")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"fresh","value":true}`, raw)
}

func TestResolverFetchErrorIsNotCached(t *testing.T) {
	store := newCountingStore()
	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	boom := errors.New("authority down")
	f := &countingFetch{err: boom}

	_, err := r.Resolve(context.Background(), "k", time.Minute, f.fetch)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(0), store.sets.Load())
}

func TestResolverInvalidValueIsNotCached(t *testing.T) {
	store := newCountingStore()
	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "no-value"}}

	_, err := r.Resolve(context.Background(), "k", time.Minute, f.fetch)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, int32(0), store.sets.Load())
}

func TestResolverDiscardsCorruptEntry(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()
	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}

	for _, raw := range []string{"not json", `{"name":"missing value"}`} {
		require.NoError(t, store.MemoryStore.Set(ctx, "k", raw, time.Minute))
		got, err := r.Resolve(ctx, "k", time.Minute, f.fetch)
		require.NoError(t, err)
		assert.Equal(t, "fresh", got.Name)
	}
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestResolverEmptyEntryIsMiss(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()
	require.NoError(t, store.MemoryStore.Set(ctx, "k", "", time.Minute))

	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}

	_, err := r.Resolve(ctx, "k", time.Minute, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestResolverDegradedOnStoreFailure(t *testing.T) {
	store := newCountingStore()
	store.failGet = true
	store.failSet = true
	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}

	for i := 0; i < 3; i++ {
		got, err := r.Resolve(context.Background(), "k", time.Minute, f.fetch)
		require.NoError(t, err)
		assert.True(t, *got.Value)
	}
	assert.Equal(t, int32(3), f.calls.Load(), "unreachable cache means every call fetches")
}

func TestResolverNilStoreRunsUncached(t *testing.T) {
	r := NewResolver[record](nil, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "k", time.Minute, f.fetch)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestResolverTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(16).WithClock(clock.Now)
	r := NewResolver[record](store, validRecord, Options{Name: "test"})
	f := &countingFetch{value: record{Name: "fresh", Value: boolPtr(true)}}
	ctx := context.Background()

	_, err := r.Resolve(ctx, "k", 60*time.Second, f.fetch)
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "k", 60*time.Second, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())

	clock.Advance(60 * time.Second)
	_, err = r.Resolve(ctx, "k", 60*time.Second, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load(), "expired entry must trigger a new fetch")
}

func TestResolverConcurrentMissesAreNotCoalesced(t *testing.T) {
	const n = 5
	store := newCountingStore()
	r := NewResolver[record](store, validRecord, Options{Name: "test"})

	// every fetch waits for all n to be in flight, which can only happen
	// when each miss issues its own call
	var inFlight sync.WaitGroup
	inFlight.Add(n)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (record, error) {
		calls.Add(1)
		inFlight.Done()
		inFlight.Wait()
		return record{Name: "fresh", Value: boolPtr(true)}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "k", time.Minute, fetch)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(n), calls.Load())
	assert.Equal(t, int32(n), store.sets.Load())
}

func TestResolverCoalesceOption(t *testing.T) {
	const n = 5
	store := newCountingStore()
	r := NewResolver[record](store, validRecord, Options{Name: "test", Coalesce: true})

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (record, error) {
		calls.Add(1)
		<-release
		return record{Name: "fresh", Value: boolPtr(true)}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Resolve(context.Background(), "k", time.Minute, fetch)
			assert.NoError(t, err)
			assert.Equal(t, "fresh", got.Name)
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), store.sets.Load())
}

func TestResolverRedactsKeyInErrors(t *testing.T) {
	r := NewResolver[record](newCountingStore(), validRecord, Options{
		Name:      "test",
		RedactKey: func(key string) string { return "redacted" },
	})
	f := &countingFetch{value: record{Name: "no-value"}}

	_, err := r.Resolve(context.Background(), "signature:secret", time.Minute, f.fetch)
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "redacted")
	assert.NotContains(t, err.Error(), "secret")
}
