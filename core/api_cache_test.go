package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPICache(t *testing.T) (*APICache, *MemoryCache) {
	t.Helper()
	store := NewMemoryCache()
	c, err := NewAPICache(APICacheConfig{Cache: store})
	require.NoError(t, err)
	return c, store
}

func TestNewAPICacheRequiresCache(t *testing.T) {
	_, err := NewAPICache(APICacheConfig{})
	require.Error(t, err)
}

func TestWrapCachesOnHit(t *testing.T) {
	c, _ := newTestAPICache(t)
	var calls atomic.Int32

	get := Wrap(c, "jobs.get", func(_ context.Context, id int) (string, error) {
		calls.Add(1)
		return "job", nil
	}, WrapOptions[int]{})

	for range 3 {
		got, err := get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "job", got)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err := get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "different argument is a different key")
}

func TestWrapForceRefreshAlwaysCalls(t *testing.T) {
	c, store := newTestAPICache(t)
	var calls atomic.Int32

	fn := func(_ context.Context, _ string) (int32, error) {
		return calls.Add(1), nil
	}
	cached := Wrap(c, "count", fn, WrapOptions[string]{})
	forced := Wrap(c, "count", fn, WrapOptions[string]{CacheOptions: CacheOptions{ForceRefresh: true}})

	got, err := cached(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)

	got, err = forced(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)

	got, err = forced(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, int32(3), got)

	got, err = cached(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, int32(3), got, "force refresh overwrites the cached entry")
	assert.Equal(t, 1, store.Stats().Size)
}

func TestWrapErrorsAreNotCached(t *testing.T) {
	c, store := newTestAPICache(t)
	errFirst := errors.New("network down")
	var calls atomic.Int32

	get := Wrap(c, "flaky", func(_ context.Context, _ struct{}) (string, error) {
		if calls.Add(1) == 1 {
			return "", errFirst
		}
		return "ok", nil
	}, WrapOptions[struct{}]{})

	_, err := get(context.Background(), struct{}{})
	require.ErrorIs(t, err, errFirst)
	assert.Equal(t, 0, store.Stats().Size)

	got, err := get(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWrapBackgroundRefresh(t *testing.T) {
	c, _ := newTestAPICache(t)
	var version atomic.Int32

	get := Wrap(c, "profile", func(_ context.Context, _ int) (int32, error) {
		return version.Add(1), nil
	}, WrapOptions[int]{CacheOptions: CacheOptions{BackgroundRefresh: true}})

	got, err := get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)

	// 命中时立即返回旧值，后台刷新
	got, err = get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)

	c.Wait()

	got, err = get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)
}

func TestWrapBackgroundRefreshFailureKeepsStaleValue(t *testing.T) {
	c, _ := newTestAPICache(t)
	var calls atomic.Int32

	get := Wrap(c, "notices", func(_ context.Context, _ int) (string, error) {
		if calls.Add(1) == 1 {
			return "stale", nil
		}
		return "", errors.New("boom")
	}, WrapOptions[int]{CacheOptions: CacheOptions{BackgroundRefresh: true}})

	ctx, cancel := context.WithCancel(context.Background())
	got, err := get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "stale", got)

	got, err = get(ctx, 1)
	cancel()
	require.NoError(t, err)
	assert.Equal(t, "stale", got)

	c.Wait()

	got, err = get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "stale", got)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestWrapSingleflight(t *testing.T) {
	c, _ := newTestAPICache(t)
	var calls atomic.Int32

	get := Wrap(c, "slow", func(_ context.Context, _ string) (string, error) {
		calls.Add(1)
		time.Sleep(30 * time.Millisecond)
		return "fresh", nil
	}, WrapOptions[string]{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			got, err := get(context.Background(), "k")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			if got != "fresh" {
				t.Errorf("unexpected value: %s", got)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestWrapKeyGeneratorAndTags(t *testing.T) {
	c, store := newTestAPICache(t)

	type query struct {
		JobID   int64
		Verbose bool
	}
	var calls atomic.Int32

	get := Wrap(c, "jobs.get", func(_ context.Context, q query) (int64, error) {
		calls.Add(1)
		return q.JobID, nil
	}, WrapOptions[query]{
		CacheOptions: CacheOptions{Tags: []string{"job"}},
		KeyGenerator: func(q query) (string, error) {
			return FuncKey("jobs.get", q.JobID)
		},
	})

	_, err := get(context.Background(), query{JobID: 1})
	require.NoError(t, err)
	_, err = get(context.Background(), query{JobID: 1, Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "Verbose is ignored by the key generator")

	store.ClearByTag("job")
	_, err = get(context.Background(), query{JobID: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWrapUnserializableArgumentCallsThrough(t *testing.T) {
	c, store := newTestAPICache(t)
	var calls atomic.Int32

	get := Wrap(c, "fn", func(_ context.Context, _ func()) (string, error) {
		calls.Add(1)
		return "ok", nil
	}, WrapOptions[func()]{})

	for range 2 {
		got, err := get(context.Background(), func() {})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, store.Stats().Size)
}

func TestWrapTagGenerator(t *testing.T) {
	c, store := newTestAPICache(t)
	var calls atomic.Int32

	get := Wrap(c, "/jobs", func(_ context.Context, id int64) (int64, error) {
		calls.Add(1)
		return id, nil
	}, WrapOptions[int64]{
		CacheOptions: CacheOptions{Tags: []string{"job"}},
		TagGenerator: func(id int64) []string {
			return []string{fmt.Sprintf("job:%d", id)}
		},
	})

	ctx := context.Background()
	for _, id := range []int64{1, 2} {
		_, err := get(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, CacheStats{Size: 2, TagCount: 3}, store.Stats())

	store.ClearByTag("job:1")
	_, err := get(ctx, 1)
	require.NoError(t, err)
	_, err = get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "only job 1 reloads")
}

func TestWrapCanceledCallerDoesNotFailOthers(t *testing.T) {
	c, store := newTestAPICache(t)
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	get := Wrap(c, "jobs.get", func(ctx context.Context, id int) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "job", nil
	}, WrapOptions[int]{})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := get(ctxA, 1)
		errA <- err
	}()
	<-started

	type result struct {
		value string
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := get(context.Background(), 1)
		resB <- result{v, err}
	}()

	time.Sleep(30 * time.Millisecond)
	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "job", b.value)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, store.Stats().Size, "shared result still cached")
}
