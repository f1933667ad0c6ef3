package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/metric"
)

func newTestMemory(t *testing.T, options ...Option) Store {
	t.Helper()
	store, err := NewMemory(context.Background(), 10*time.Millisecond, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t)

	_, ok, err := store.Get(ctx, "events?page=1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "events?page=1", []byte(`{"events":[]}`), time.Minute))

	value, ok, err := store.Get(ctx, "events?page=1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"events":[]}`, string(value))

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Hits())
	assert.Equal(t, int64(1), stats.Misses())
	assert.Equal(t, int64(1), stats.Sets())
	assert.Equal(t, int64(1), stats.CurrentSize())
	assert.InDelta(t, 0.5, stats.HitRatio(), 0.001)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t)

	payload := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", payload, time.Minute))
	payload[0] = 'x'

	value, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(value))

	value[1] = 'y'
	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var evicted []string
	store := newTestMemory(t, WithEvictionCallback(func(key string) {
		mu.Lock()
		evicted = append(evicted, key)
		mu.Unlock()
	}))

	require.NoError(t, store.Set(ctx, "short", []byte("1"), 5*time.Millisecond))
	require.NoError(t, store.Set(ctx, "long", []byte("2"), time.Minute))

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, "short")
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok, _ := store.Get(ctx, "long")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, store.Stats().Evictions(), int64(1))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"short"}, evicted)
}

func TestMemory_ZeroTTLStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	_, ok, _ := store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "missing"))

	_, ok, _ := store.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, int64(1), store.Stats().Deletes())
}

func TestMemory_EmptyKey(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t)

	err := store.Set(ctx, "", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	_, _, err = store.Get(ctx, "")
	assert.Error(t, err)
}

func TestMemory_Concurrency(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", (i*100+j)%50)
				_ = store.Set(ctx, key, []byte(key), time.Minute)
				_, _, _ = store.Get(ctx, key)
				if j%10 == 0 {
					_ = store.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()

	stats := store.Stats()
	assert.Equal(t, int64(2000), stats.Sets())
	assert.Equal(t, int64(2000), stats.Hits()+stats.Misses())
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	registry := metric.NewMetricsRegistry()
	var evicted []string
	store := newTestMemory(t,
		WithMaxEntries(3),
		WithMetrics(registry, "upstream_media"),
		WithEvictionCallback(func(key string) { evicted = append(evicted, key) }))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("events/search?q=x%d", i), []byte("v"), time.Minute))
	}

	// reading q=x0 makes q=x1 the oldest entry
	_, ok, err := store.Get(ctx, "events/search?q=x0")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Set(ctx, "events/search?q=x3", []byte("v"), time.Minute))
	require.NoError(t, store.Set(ctx, "events/search?q=x4", []byte("v"), time.Minute))

	assert.Equal(t, []string{"events/search?q=x1", "events/search?q=x2"}, evicted)
	for _, key := range []string{"events/search?q=x0", "events/search?q=x3", "events/search?q=x4"} {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}

	stats := store.Stats()
	assert.Equal(t, int64(2), stats.Evictions())
	assert.Equal(t, int64(3), stats.CurrentSize())
	assert.Equal(t, int64(3), stats.MaxSize())

	evictions, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "mediagql_cache_evictions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, evictions)
}

func TestMemory_OverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	store := newTestMemory(t, WithMaxEntries(2))

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "a", []byte("3"), time.Minute))

	value, ok, _ := store.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "3", string(value))
	_, ok, _ = store.Get(ctx, "b")
	assert.True(t, ok)
	assert.Zero(t, store.Stats().Evictions())
}

func TestMemory_Metrics(t *testing.T) {
	ctx := context.Background()
	registry := metric.NewMetricsRegistry()
	store := newTestMemory(t, WithMetrics(registry, "upstream_media"))

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	_, _, _ = store.Get(ctx, "a")
	_, _, _ = store.Get(ctx, "b")

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(),
		"mediagql_cache_hits_total", "mediagql_cache_misses_total", "mediagql_cache_size")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// registering the same prefix twice is rejected
	_, err = NewMemory(ctx, time.Minute, WithMetrics(registry, "upstream_media"))
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	store := NewNoop()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), store.Stats().Misses())
	assert.NoError(t, store.Close())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"empty backend defaults to memory", Config{}, false},
		{"none", Config{Backend: BackendNone}, false},
		{"redis without addr", Config{Backend: BackendRedis}, true},
		{"redis", Config{Backend: BackendRedis, Redis: RedisConfig{Addr: "localhost:6379"}}, false},
		{"unknown backend", Config{Backend: "memcached"}, true},
		{"bad interval", Config{CleanupIntervalStr: "soon"}, true},
		{"negative interval", Config{CleanupIntervalStr: "-1s"}, true},
		{"negative max entries", Config{MaxEntries: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Positive(t, cfg.CleanupInterval())
			assert.Positive(t, cfg.MaxEntries)
		})
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, Config{Backend: BackendNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, &noopStore{}, store)

	store, err = New(ctx, DefaultConfig(), nil)
	require.NoError(t, err)
	defer store.Close()
	require.IsType(t, &memoryStore{}, store)
	assert.Equal(t, DefaultMaxEntries, store.(*memoryStore).maxEntries)

	bounded, err := New(ctx, Config{Backend: BackendMemory, MaxEntries: 5}, nil)
	require.NoError(t, err)
	defer bounded.Close()
	assert.Equal(t, 5, bounded.(*memoryStore).maxEntries)
}
