// Package cache holds keyed query results for the client and applies
// optimistic mutations to them.
//
// Reads go through Query, which serves fresh entries from memory and
// otherwise fetches once per key at a time. Writes go through Mutate, which
// applies the optimistic value before the network call starts and either
// reconciles it with the server result or restores the exact prior entries.
// Mutations on the same key are serialized.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pennywise/internal/eventbus"
)

// DefaultStaleTime is how long a fetched entry is served without refetching.
const DefaultStaleTime = 5 * time.Minute

// ErrClosed is returned by Query after Close.
var ErrClosed = errors.New("cache: closed")

// Fetcher loads the value of a key.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
	fetch     Fetcher
}

// Change is the payload of eventbus.CacheChanged.
type Change struct {
	Key    string
	Reason string
}

// Change reasons.
const (
	ReasonFetched     = "fetched"
	ReasonSet         = "set"
	ReasonOptimistic  = "optimistic"
	ReasonCommitted   = "committed"
	ReasonRolledBack  = "rolled-back"
	ReasonInvalidated = "invalidated"
	ReasonCleared     = "cleared"
)

// Cache is a process-local keyed cache. Create one per app instance.
type Cache struct {
	staleTime     time.Duration
	retryInterval time.Duration
	refetch       bool
	now           func() time.Time
	bus           *eventbus.Bus
	log           *zap.SugaredLogger

	mu      sync.Mutex
	entries map[string]*entry
	gens    map[string]uint64
	epoch   uint64
	closed  bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	group singleflight.Group

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets the freshness window of fetched entries.
func WithStaleTime(d time.Duration) Option { return func(c *Cache) { c.staleTime = d } }

// WithRetryInterval sets the delay before the single read retry.
func WithRetryInterval(d time.Duration) Option { return func(c *Cache) { c.retryInterval = d } }

// WithBackgroundRefetch controls whether Invalidate refetches affected keys.
func WithBackgroundRefetch(enabled bool) Option { return func(c *Cache) { c.refetch = enabled } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

// WithBus publishes change events on bus.
func WithBus(bus *eventbus.Bus) Option { return func(c *Cache) { c.bus = bus } }

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option { return func(c *Cache) { c.log = log } }

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		staleTime:     DefaultStaleTime,
		retryInterval: 500 * time.Millisecond,
		refetch:       true,
		now:           time.Now,
		log:           zap.NewNop().Sugar(),
		entries:       make(map[string]*entry),
		gens:          make(map[string]uint64),
		locks:         make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bgCtx, c.bgCancel = context.WithCancel(context.Background())
	return c
}

// Query returns the value at key, fetching it when absent, stale or
// invalidated. A fetch that completes after the key was mutated, invalidated
// or cleared does not overwrite the cache.
func Query[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.fresh(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) })
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.New("cache: unexpected value type at " + key)
	}
	return typed, nil
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) load(ctx context.Context, key string, fetch Fetcher) (any, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrClosed
		}
		gen, epoch := c.gens[key], c.epoch
		c.mu.Unlock()

		v, err := c.fetchWithRetry(ctx, key, fetch)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.closed || c.epoch != epoch || c.gens[key] != gen {
			var current any = v
			if e, ok := c.entries[key]; ok && !c.closed {
				current = e.value
			}
			c.mu.Unlock()
			c.log.Debugw("discarding superseded fetch", "key", key)
			return current, nil
		}
		c.entries[key] = &entry{value: v, fetchedAt: c.now(), fetch: fetch}
		c.mu.Unlock()

		c.emit(key, ReasonFetched)
		return v, nil
	})
	return v, err
}

// Peek returns the cached value at key without fetching, fresh or not.
func Peek[T any](c *Cache, key string) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	typed, ok := e.value.(T)
	return typed, ok
}

// Set stores v at key as a freshly fetched value.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	var fetch Fetcher
	if e, ok := c.entries[key]; ok {
		fetch = e.fetch
	}
	c.entries[key] = &entry{value: v, fetchedAt: c.now(), fetch: fetch}
	c.gens[key]++
	c.mu.Unlock()
	c.emit(key, ReasonSet)
}

// Snapshot returns the current value of every key.
func (c *Cache) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.entries))
	for k, e := range c.entries {
		out[k] = e.value
	}
	return out
}

// Invalidate marks every key starting with prefix stale and, when background
// refetch is on, reloads them asynchronously. It never blocks on fetches or
// mutations.
func (c *Cache) Invalidate(prefix string) {
	type job struct {
		key   string
		fetch Fetcher
	}
	var jobs []job

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	for k, e := range c.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		e.stale = true
		c.gens[k]++
		if c.refetch && e.fetch != nil {
			jobs = append(jobs, job{key: k, fetch: e.fetch})
		}
	}
	c.bg.Add(len(jobs))
	c.mu.Unlock()

	for _, j := range jobs {
		c.emit(j.key, ReasonInvalidated)
		go func(j job) {
			defer c.bg.Done()
			if _, err := c.load(c.bgCtx, j.key, j.fetch); err != nil && !errors.Is(err, ErrClosed) {
				c.log.Debugw("background refetch failed", "key", j.key, "error", err)
			}
		}(j)
	}
}

// Wait blocks until background refetches started so far have finished.
func (c *Cache) Wait() {
	c.bg.Wait()
}

// Clear drops every entry. Fetches and mutations in flight finish without
// writing to the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.epoch++
	c.mu.Unlock()
	c.emit("", ReasonCleared)
}

// Close clears the cache, cancels background refetches and waits for them.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.entries = make(map[string]*entry)
	c.epoch++
	c.mu.Unlock()

	c.bgCancel()
	c.bg.Wait()
}

func (c *Cache) emit(key, reason string) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(context.Background(), eventbus.CacheChanged, Change{Key: key, Reason: reason})
}
