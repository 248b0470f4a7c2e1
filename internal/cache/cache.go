// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/marquee/internal/store"
)

// FetchFunc loads a fresh value from the origin.
type FetchFunc[T any] func(context.Context) (T, error)

// Origin tells a caller where a Result came from.
type Origin int

const (
	// OriginCache is a fresh hit; the origin was not contacted.
	OriginCache Origin = iota
	// OriginFetch is a value just fetched and written to the store.
	OriginFetch
	// OriginStale is an expired entry served because the fetch failed.
	OriginStale
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginFetch:
		return "fetch"
	case OriginStale:
		return "stale"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Result is a value plus its provenance.
type Result[T any] struct {
	Value    T
	Origin   Origin
	StoredAt time.Time
	// FetchErr is the refresh failure that caused a stale entry to be served.
	FetchErr error
}

// Stale reports whether the value was served in degraded mode.
func (r Result[T]) Stale() bool { return r.Origin == OriginStale }

// Cache is a TTL cache over a store.Store for payloads of type T. It is safe
// for concurrent use; several Cache instances with different T and TTL may
// share one store as long as their keys don't collide.
type Cache[T any] struct {
	store    store.Store
	ttl      time.Duration
	now      func() time.Time
	logger   log.Interface
	coalesce bool
	group    singleflight.Group
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	now      func() time.Time
	logger   log.Interface
	coalesce bool
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(l log.Interface) Option {
	return func(o *options) { o.logger = l }
}

// WithCoalescing makes concurrent misses for the same key share a single
// fetch. The first caller's context is the one handed to the fetch.
func WithCoalescing() Option {
	return func(o *options) { o.coalesce = true }
}

// New returns a Cache applying ttl to every key.
func New[T any](s store.Store, ttl time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now, logger: log.Log}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		store:    s,
		ttl:      ttl,
		now:      o.now,
		logger:   o.logger,
		coalesce: o.coalesce,
	}
}

// TTL returns the time-to-live applied to every key.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the data for key if an entry exists and is younger than the
// TTL. Expired entries are reported as absent but left in the store.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	e, ok, err := c.Peek(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if !e.Fresh(c.now(), c.ttl) {
		c.logger.Debugf("cache stale: %s", key)
		return zero, false, nil
	}
	return e.Data, true, nil
}

// Peek returns the stored entry for key regardless of its age. Entries that
// fail to decode are treated as absent.
func (c *Cache[T]) Peek(ctx context.Context, key string) (Entry[T], bool, error) {
	if key == "" {
		return Entry[T]{}, false, ErrEmptyKey
	}

	raw, ok, err := c.store.GetItem(ctx, key)
	if err != nil {
		return Entry[T]{}, false, &StorageError{Op: "read", Key: key, Err: err}
	}
	if !ok {
		return Entry[T]{}, false, nil
	}

	e, err := DecodeEntry[T](raw)
	if err != nil {
		c.logger.WithError(err).Warnf("ignoring corrupt cache entry %s", key)
		return Entry[T]{}, false, nil
	}
	return e, true, nil
}

// Set overwrites the entry for key with data stamped at the current time.
func (c *Cache[T]) Set(ctx context.Context, key string, data T) error {
	_, err := c.put(ctx, key, data)
	return err
}

func (c *Cache[T]) put(ctx context.Context, key string, data T) (Entry[T], error) {
	if key == "" {
		return Entry[T]{}, ErrEmptyKey
	}

	e := NewEntry(data, c.now())
	raw, err := e.Encode()
	if err != nil {
		return Entry[T]{}, &StorageError{Op: "write", Key: key, Err: err}
	}
	if err := c.store.SetItem(ctx, key, raw); err != nil {
		return Entry[T]{}, &StorageError{Op: "write", Key: key, Err: err}
	}
	return e, nil
}

// GetOrFetch returns a fresh cached value or calls fetch and stores its
// result. When fetch fails, any stored entry for key is returned no matter
// how old it is; the fetch error is returned only when nothing is stored.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, fetch FetchFunc[T]) (T, error) {
	r, err := c.Fetch(ctx, key, fetch)
	return r.Value, err
}

// Fetch is GetOrFetch with provenance.
func (c *Cache[T]) Fetch(ctx context.Context, key string, fetch FetchFunc[T]) (Result[T], error) {
	e, ok, err := c.Peek(ctx, key)
	if err != nil {
		return Result[T]{}, err
	}
	if ok && e.Fresh(c.now(), c.ttl) {
		c.logger.Debugf("cache hit: %s", key)
		return Result[T]{Value: e.Data, Origin: OriginCache, StoredAt: e.StoredAt()}, nil
	}

	if !c.coalesce {
		return c.refresh(ctx, key, fetch)
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.refresh(ctx, key, fetch)
	})
	if shared {
		c.logger.Debugf("coalesced fetch: %s", key)
	}
	if err != nil {
		return Result[T]{}, err
	}
	return v.(Result[T]), nil //nolint:forcetypeassert
}

// refresh runs fetch and falls back to the stored entry on failure.
func (c *Cache[T]) refresh(ctx context.Context, key string, fetch FetchFunc[T]) (Result[T], error) {
	c.logger.Debugf("cache miss, fetching: %s", key)

	data, fetchErr := fetch(ctx)
	if fetchErr == nil {
		e, err := c.put(ctx, key, data)
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Value: data, Origin: OriginFetch, StoredAt: e.StoredAt()}, nil
	}

	e, ok, err := c.Peek(ctx, key)
	if err != nil {
		return Result[T]{}, errors.Join(fetchErr, err)
	}
	if !ok {
		return Result[T]{}, fetchErr
	}

	c.logger.WithError(fetchErr).Warnf("using expired cache for %s", key)
	return Result[T]{
		Value:    e.Data,
		Origin:   OriginStale,
		StoredAt: e.StoredAt(),
		FetchErr: fetchErr,
	}, nil
}
