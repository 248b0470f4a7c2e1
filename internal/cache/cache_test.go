// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/marquee/internal/store"
)

type row struct {
	Rank  int    `json:"rank"`
	Title string `json:"title"`
	Gross string `json:"gross"`
}

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var quiet = &log.Logger{Handler: discard.New(), Level: log.FatalLevel}

func newTestCache[T any](t *testing.T, ttl time.Duration, opts ...Option) (*Cache[T], *store.Memory, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	mem := store.NewMemory()
	opts = append([]Option{WithClock(clk.Now), WithLogger(quiet)}, opts...)
	return New[T](mem, ttl, opts...), mem, clk
}

func failing[T any](err error) FetchFunc[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

func TestGet_FreshHit(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache[[]row](t, 6*time.Hour)

	want := []row{{Rank: 1, Title: "X", Gross: "$1M"}}
	require.NoError(t, c.Set(ctx, "daily", want))

	got, ok, err := c.Get(ctx, "daily")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestGet_Miss(t *testing.T) {
	c, _, _ := newTestCache[[]row](t, 6*time.Hour)

	got, ok, err := c.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGet_ExpiredIsAbsentButKept(t *testing.T) {
	ctx := context.Background()
	c, mem, clk := newTestCache[string](t, 6*time.Hour)

	require.NoError(t, c.Set(ctx, "k", "v"))
	clk.Advance(6*time.Hour + time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, stored, _ := mem.GetItem(ctx, "k")
	assert.True(t, stored, "expired entry must stay in the store")
}

func TestGet_ExactlyTTLIsStale(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[string](t, time.Hour)

	require.NoError(t, c.Set(ctx, "k", "v"))
	clk.Advance(time.Hour)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_CorruptEntryIsAbsent(t *testing.T) {
	ctx := context.Background()
	c, mem, _ := newTestCache[[]row](t, time.Hour)

	for _, raw := range []string{`not json`, `{"data":[1,2]}`, `{"data":"x","timestamp":1}`} {
		require.NoError(t, mem.SetItem(ctx, "k", []byte(raw)))
		_, ok, err := c.Get(ctx, "k")
		assert.NoError(t, err, raw)
		assert.False(t, ok, raw)
	}
}

func TestSet_Overwrite(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[string](t, time.Hour)

	require.NoError(t, c.Set(ctx, "k", "v1"))
	clk.Advance(time.Minute)
	require.NoError(t, c.Set(ctx, "k", "v2"))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", got)

	e, _, _ := c.Peek(ctx, "k")
	assert.Equal(t, clk.Now().UnixMilli(), e.Timestamp)
}

func TestGet_IdempotentReads(t *testing.T) {
	ctx := context.Background()
	c, mem, clk := newTestCache[map[string]int](t, time.Hour)

	require.NoError(t, c.Set(ctx, "k", map[string]int{"total": 500}))
	before, _, _ := mem.GetItem(ctx, "k")

	for i := 0; i < 3; i++ {
		clk.Advance(time.Minute)
		got, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, map[string]int{"total": 500}, got)
	}

	after, _, _ := mem.GetItem(ctx, "k")
	assert.Equal(t, before, after)
}

func TestEmptyKey(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache[string](t, time.Hour)

	_, _, err := c.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, c.Set(ctx, "", "v"), ErrEmptyKey)
	_, err = c.GetOrFetch(ctx, "", func(context.Context) (string, error) { return "v", nil })
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestGetOrFetch_HitSkipsFetch(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache[string](t, time.Hour)
	require.NoError(t, c.Set(ctx, "k", "cached"))

	called := false
	got, err := c.GetOrFetch(ctx, "k", func(context.Context) (string, error) {
		called = true
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", got)
	assert.False(t, called)
}

func TestGetOrFetch_MissStores(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[string](t, time.Hour)

	r, err := c.Fetch(ctx, "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", r.Value)
	assert.Equal(t, OriginFetch, r.Origin)
	assert.True(t, clk.Now().Equal(r.StoredAt))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestGetOrFetch_StaleFallback(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[string](t, time.Hour)
	require.NoError(t, c.Set(ctx, "k", "old"))
	clk.Advance(48 * time.Hour)

	boom := errors.New("503")
	r, err := c.Fetch(ctx, "k", failing[string](boom))
	require.NoError(t, err)
	assert.Equal(t, "old", r.Value)
	assert.True(t, r.Stale())
	assert.ErrorIs(t, r.FetchErr, boom)
	assert.Equal(t, 48*time.Hour, clk.Now().Sub(r.StoredAt))
}

func TestGetOrFetch_NoEntryPropagatesSameError(t *testing.T) {
	c, _, _ := newTestCache[string](t, time.Hour)

	boom := errors.New("timeout")
	_, err := c.GetOrFetch(context.Background(), "weekend", failing[string](boom))
	assert.Same(t, boom, err)
}

func TestGetOrFetch_CorruptEntryDoesNotMaskFetchError(t *testing.T) {
	ctx := context.Background()
	c, mem, _ := newTestCache[string](t, time.Hour)
	require.NoError(t, mem.SetItem(ctx, "k", []byte("{")))

	boom := errors.New("down")
	_, err := c.GetOrFetch(ctx, "k", failing[string](boom))
	assert.Same(t, boom, err)
}

// brokenStore fails reads and/or writes on demand.
type brokenStore struct {
	*store.Memory
	readErr  error
	writeErr error
}

func (b *brokenStore) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	if b.readErr != nil {
		return nil, false, b.readErr
	}
	return b.Memory.GetItem(ctx, key)
}

func (b *brokenStore) SetItem(ctx context.Context, key string, value []byte) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	return b.Memory.SetItem(ctx, key, value)
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	quota := errors.New("quota exceeded")
	bs := &brokenStore{Memory: store.NewMemory(), writeErr: quota}
	c := New[string](bs, time.Hour, WithLogger(quiet))

	err := c.Set(ctx, "k", "v")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "write", se.Op)
	assert.ErrorIs(t, err, quota)
	assert.ErrorIs(t, err, ErrStorage)

	// A successful fetch whose write fails surfaces the storage failure.
	_, err = c.GetOrFetch(ctx, "k", func(context.Context) (string, error) { return "v", nil })
	assert.ErrorIs(t, err, ErrStorage)

	bs.writeErr = nil
	bs.readErr = errors.New("disk gone")
	_, _, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStorage)

	called := false
	_, err = c.GetOrFetch(ctx, "k", func(context.Context) (string, error) {
		called = true
		return "v", nil
	})
	assert.ErrorIs(t, err, ErrStorage)
	assert.False(t, called, "a broken store must not trigger a fetch")
}

func TestGetOrFetch_ConcurrentMisses(t *testing.T) {
	const n = 8

	tests := []struct {
		name      string
		opts      []Option
		wantCalls int32
	}{
		{name: "each caller fetches", wantCalls: n},
		{name: "coalesced", opts: []Option{WithCoalescing()}, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, _, _ := newTestCache[int](t, time.Hour, tt.opts...)

			var started, calls atomic.Int32
			release := make(chan struct{})
			fetch := func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			}

			var wg sync.WaitGroup
			results := make([]int, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					started.Add(1)
					v, err := c.GetOrFetch(ctx, "k", fetch)
					assert.NoError(t, err)
					results[i] = v
				}(i)
			}

			// Every caller has to be parked on the miss before the fetch
			// completes, otherwise late callers would see a fresh entry.
			require.Eventually(t, func() bool { return started.Load() == n }, time.Second, time.Millisecond)
			require.Eventually(t, func() bool { return calls.Load() >= tt.wantCalls }, time.Second, time.Millisecond)
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			assert.Equal(t, tt.wantCalls, calls.Load())
			for _, v := range results {
				assert.Equal(t, 42, v)
			}
		})
	}
}

func TestOrigin_String(t *testing.T) {
	assert.Equal(t, "cache", OriginCache.String())
	assert.Equal(t, "fetch", OriginFetch.String())
	assert.Equal(t, "stale", OriginStale.String())
	assert.Equal(t, "origin(9)", Origin(9).String())
}
