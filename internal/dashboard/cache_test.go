package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookups struct {
	hits, misses atomic.Int32
}

func (l *lookups) CacheLookup(_ string, hit bool) {
	if hit {
		l.hits.Add(1)
		return
	}
	l.misses.Add(1)
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *lookups) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	rec := &lookups{}
	return NewCache(client, time.Minute, rec), mr, rec
}

func TestCacheBuildKeyFollowsVersion(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	k1, err := cache.BuildKey(ctx, "user-1", "metrics")
	require.NoError(t, err)
	assert.Equal(t, "devisflow:dashboard:user-1:metrics:v1", k1)

	require.NoError(t, cache.Bump(ctx, "user-1"))
	k2, err := cache.BuildKey(ctx, "user-1", "metrics")
	require.NoError(t, err)
	assert.Equal(t, "devisflow:dashboard:user-1:metrics:v2", k2)

	other, err := cache.BuildKey(ctx, "user-2", "metrics")
	require.NoError(t, err)
	assert.Equal(t, "devisflow:dashboard:user-2:metrics:v1", other)
}

func TestCacheFetchJSONUsesStoredValue(t *testing.T) {
	cache, mr, rec := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"n": calls}, nil
	}

	var first, second map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), rec.hits.Load())
	assert.Equal(t, int32(1), rec.misses.Load())

	mr.FastForward(2 * time.Minute)
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))
	assert.Equal(t, 2, second["n"])
}

func TestCacheFetchJSONCoalescesMisses(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cache.FetchJSON(ctx, "hot", &results[i], loader)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, r := range results {
		assert.Equal(t, "value", r)
	}
}

func TestCacheLoaderErrorIsNotCached(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	boom := errors.New("db down")

	var out string
	err := cache.FetchJSON(context.Background(), "k", &out, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestNilCacheCallsLoader(t *testing.T) {
	var cache *Cache
	var out int
	require.NoError(t, cache.FetchJSON(context.Background(), "k", &out, func(context.Context) (any, error) { return 7, nil }))
	assert.Equal(t, 7, out)
	require.NoError(t, cache.Bump(context.Background(), "user-1"))
}
