package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type figures struct {
	Profit float64 `json:"profit"`
}

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewReportCache(client, time.Minute, logger), mr
}

func TestReportCache_FetchJSONCachesUntilBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return figures{Profit: float64(calls * 100)}, nil
	}

	key, err := c.BuildKey(ctx, "summary", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "reports:summary:1:2:v1", key)

	var first, second figures
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	require.NoError(t, c.Bump(ctx))

	key, err = c.BuildKey(ctx, "summary", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "reports:summary:1:2:v2", key)

	var third figures
	require.NoError(t, c.FetchJSON(ctx, key, &third, loader))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 200.0, third.Profit)
}

func TestReportCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var out figures
	require.NoError(t, c.FetchJSON(ctx, "k", &out, func(context.Context) (interface{}, error) {
		return figures{Profit: 1}, nil
	}))
	assert.True(t, mr.Exists("k"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("k"))
}

func TestReportCache_Disabled(t *testing.T) {
	var c *ReportCache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Bump(ctx))
	assert.NoError(t, c.Ping(ctx))

	key, err := c.BuildKey(ctx, "top-products", "10")
	require.NoError(t, err)
	assert.Equal(t, "reports:top-products:10", key)

	calls := 0
	var out figures
	for i := 0; i < 2; i++ {
		require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
			calls++
			return figures{Profit: 5}, nil
		}))
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 5.0, out.Profit)
}

func TestReportCache_LoaderErrors(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var out figures
	err := c.FetchJSON(ctx, "k", &out, func(context.Context) (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))

	assert.Error(t, c.FetchJSON(ctx, "k", &out, nil))
}

func TestReportCache_RedisDownFallsBackToLoader(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var out figures
	err := c.FetchJSON(context.Background(), "k", &out, func(context.Context) (interface{}, error) {
		return figures{Profit: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, out.Profit)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordCacheLookup(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[result]++
}

func TestReportCache_RecordsLookups(t *testing.T) {
	c, _ := newTestCache(t)
	recorder := &countingRecorder{}
	c.SetRecorder(recorder)
	ctx := context.Background()

	var out figures
	loader := func(context.Context) (interface{}, error) { return figures{Profit: 3}, nil }
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))

	assert.Equal(t, map[string]int{LookupMiss: 1, LookupHit: 2}, recorder.counts)
}

func TestReportCache_ConcurrentMissesShareLoader(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return figures{Profit: 42}, nil
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]figures, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.FetchJSON(ctx, "shared", &results[i], loader)
		}(i)
	}

	// Let every caller reach the in-flight build before it finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42.0, results[i].Profit)
	}
	assert.Equal(t, 1, calls)
}

func TestReportCache_CancelledCaller(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	defer close(release)

	var out figures
	err := c.FetchJSON(ctx, "k", &out, func(context.Context) (interface{}, error) {
		<-release
		return figures{Profit: 1}, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportCache_WaiterSurvivesFirstCallerCancel(t *testing.T) {
	c, mr := newTestCache(t)

	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	loader := func(ctx context.Context) (interface{}, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return figures{Profit: 7}, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		var out figures
		firstErr <- c.FetchJSON(firstCtx, "shared", &out, loader)
	}()
	<-started

	waiterErr := make(chan error, 1)
	var waiter figures
	go func() {
		waiterErr <- c.FetchJSON(context.Background(), "shared", &waiter, loader)
	}()

	// Give the waiter time to join the in-flight build.
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-waiterErr)
	assert.Equal(t, 7.0, waiter.Profit)
	assert.True(t, mr.Exists("shared"), "shared build still stores the report")
}
