package query

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultStaleTime    = 30 * time.Second
	defaultFetchTimeout = 15 * time.Second
	defaultSharedTTL    = 5 * time.Minute
)

var errNoData = errors.New("query: no data")

// Outcomes reported to the Observer.
const (
	OutcomeHit       = "hit"
	OutcomeSharedHit = "shared_hit"
	OutcomeMiss      = "miss"
	OutcomeError     = "error"
	OutcomeStale     = "stale"
	OutcomeCancelled = "cancelled"
)

// SharedStore is a cross-instance cache. CacheService satisfies it.
type SharedStore interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// Observer receives query metrics. MetricsService satisfies it.
type Observer interface {
	ObserveQuery(resource, outcome string, duration time.Duration)
	ObserveInvalidation(resource string)
}

// Listener is told about every invalidated key prefix.
type Listener func(ctx context.Context, key Key)

// FetchFunc retrieves the current value for a key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Config tunes a Client.
type Config struct {
	StaleTime    time.Duration
	FetchTimeout time.Duration
	SharedTTL    time.Duration
}

type entry struct {
	key        Key
	data       any
	hasData    bool
	updatedAt  time.Time
	err        error
	stale      bool
	generation uint64
	inflight   int
	touchedAt  time.Time
}

// Client holds the cache entries. Each key has at most one fetch in flight and
// a fetch started before an invalidation never overwrites the entry.
type Client struct {
	mu        sync.Mutex
	entries   map[string]*entry
	listeners []Listener
	group     singleflight.Group

	cfg      Config
	shared   SharedStore
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithSharedStore enables the second cache layer.
func WithSharedStore(store SharedStore) Option {
	return func(c *Client) { c.shared = store }
}

// WithObserver attaches metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient constructs a Client.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.StaleTime <= 0 {
		cfg.StaleTime = defaultStaleTime
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.SharedTTL <= 0 {
		cfg.SharedTTL = defaultSharedTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		entries: make(map[string]*entry),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// OnInvalidate registers a listener.
func (c *Client) OnInvalidate(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

type fetchOptions struct {
	staleTime time.Duration
}

// FetchOption customises a single Fetch.
type FetchOption func(*fetchOptions)

// WithStaleTime overrides the freshness window for one query.
func WithStaleTime(d time.Duration) FetchOption {
	return func(o *fetchOptions) { o.staleTime = d }
}

// Fetch returns the value for key, fetching it with fn when the cached copy
// is missing or stale. Concurrent callers for the same key share one fetch.
// The fetch is detached from ctx: a caller whose ctx ends gets ctx.Err() while
// the fetch completes for everyone else.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn FetchFunc[T], opts ...FetchOption) Result[T] {
	o := fetchOptions{staleTime: c.cfg.StaleTime}
	for _, opt := range opts {
		opt(&o)
	}
	start := c.now()
	id := key.String()

	c.mu.Lock()
	e := c.entryLocked(key)
	if res, ok := freshLocked[T](e, c.now(), o.staleTime); ok {
		c.mu.Unlock()
		c.observe(key, OutcomeHit, start)
		return res
	}
	gen := e.generation
	needShared := !e.hasData
	c.mu.Unlock()

	if needShared && c.sharedEnabled() {
		if res, ok := loadShared[T](ctx, c, key, gen); ok {
			c.observe(key, OutcomeSharedHit, start)
			return res
		}
	}

	c.mu.Lock()
	e = c.entryLocked(key)
	gen = e.generation
	c.mu.Unlock()

	ch := c.group.DoChan(id+"@"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return c.run(ctx, key, gen, func(fctx context.Context) (any, error) {
			return fn(fctx)
		})
	})

	select {
	case <-ctx.Done():
		c.observe(key, OutcomeCancelled, start)
		return Result[T]{State: StateError, Err: ctx.Err()}
	case res := <-ch:
		return settle[T](c, key, res, start)
	}
}

// Peek reports the current state of key without fetching.
func Peek[T any](c *Client, key Key) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Result[T]{State: StateIdle}
	}
	if e.hasData {
		data, ok := e.data.(T)
		if ok {
			return Result[T]{State: StateSuccess, Data: data, UpdatedAt: e.updatedAt, FromCache: true, Stale: e.stale}
		}
	}
	if e.inflight > 0 {
		return Result[T]{State: StateLoading}
	}
	if e.err != nil {
		return Result[T]{State: StateError, Err: e.err}
	}
	return Result[T]{State: StateIdle}
}

// Invalidate marks every entry under each key prefix stale, clears the
// matching shared entries and tells listeners. Repeated keys are handled once.
func (c *Client) Invalidate(ctx context.Context, keys ...Key) {
	keys = Dedupe(keys)
	if len(keys) == 0 {
		return
	}

	c.mu.Lock()
	for _, prefix := range keys {
		for _, e := range c.entries {
			if e.key.HasPrefix(prefix) {
				e.generation++
				e.stale = true
			}
		}
	}
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, prefix := range keys {
		if c.sharedEnabled() {
			for _, pattern := range prefix.storagePatterns() {
				if err := c.shared.Invalidate(ctx, pattern); err != nil {
					c.logger.Warn("shared cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
				}
			}
		}
		if c.observer != nil {
			c.observer.ObserveInvalidation(prefix.Resource())
		}
		for _, l := range listeners {
			l(ctx, prefix)
		}
	}
}

// Prune drops entries untouched for longer than maxAge that have no fetch in
// flight. It returns the number removed.
func (c *Client) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-maxAge)
	removed := 0
	for id, e := range c.entries {
		if e.inflight == 0 && e.touchedAt.Before(cutoff) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes periodically until ctx ends.
func (c *Client) RunJanitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Prune(maxAge); n > 0 {
				c.logger.Debug("pruned query entries", zap.Int("count", n))
			}
		}
	}
}

// Len returns the number of tracked keys.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Client) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key}
		c.entries[id] = e
	}
	e.touchedAt = c.now()
	return e
}

func freshLocked[T any](e *entry, now time.Time, staleTime time.Duration) (Result[T], bool) {
	if !e.hasData || e.stale || now.Sub(e.updatedAt) >= staleTime {
		return Result[T]{}, false
	}
	data, ok := e.data.(T)
	if !ok {
		return Result[T]{}, false
	}
	return Result[T]{State: StateSuccess, Data: data, UpdatedAt: e.updatedAt, FromCache: true}, true
}

func loadShared[T any](ctx context.Context, c *Client, key Key, gen uint64) (Result[T], bool) {
	var data T
	hit, err := c.shared.Get(ctx, key.storageKey(), &data)
	if err != nil || !hit {
		return Result[T]{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	if e.generation != gen {
		return Result[T]{}, false
	}
	now := c.now()
	e.data, e.hasData, e.updatedAt, e.stale, e.err = data, true, now, false, nil
	return Result[T]{State: StateSuccess, Data: data, UpdatedAt: now, FromCache: true}, true
}

// run executes one shared fetch and stores its outcome if no invalidation
// happened meanwhile.
func (c *Client) run(ctx context.Context, key Key, gen uint64, fn func(context.Context) (any, error)) (interface{}, error) {
	c.mu.Lock()
	c.entryLocked(key).inflight++
	c.mu.Unlock()

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
	defer cancel()
	value, err := fn(fctx)

	c.mu.Lock()
	e := c.entryLocked(key)
	e.inflight--
	current := e.generation == gen
	now := c.now()
	if current {
		if err != nil {
			e.err = err
		} else {
			e.data, e.hasData, e.updatedAt, e.stale, e.err = value, true, now, false, nil
		}
	}
	c.mu.Unlock()

	if err == nil && current && c.sharedEnabled() {
		sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
		if serr := c.shared.Set(sctx, key.storageKey(), value, c.cfg.SharedTTL); serr != nil {
			c.logger.Warn("shared cache write failed", zap.String("key", key.String()), zap.Error(serr))
		}
		scancel()
	}
	if err == nil && !current {
		c.logger.Debug("discarded fetch superseded by invalidation", zap.String("key", key.String()))
	}
	return fetched{value: value, at: now}, err
}

type fetched struct {
	value any
	at    time.Time
}

// settle turns a shared fetch outcome into the caller's result, falling back
// to the last good value when the fetch failed.
func settle[T any](c *Client, key Key, res singleflight.Result, start time.Time) Result[T] {
	if res.Err == nil {
		f, _ := res.Val.(fetched)
		if data, ok := f.value.(T); ok {
			c.observe(key, OutcomeMiss, start)
			return Result[T]{State: StateSuccess, Data: data, UpdatedAt: f.at}
		}
		c.observe(key, OutcomeError, start)
		return Result[T]{State: StateError, Err: errors.New("query: cached type mismatch for " + key.String())}
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	prior, hasPrior := e.data.(T)
	hasPrior = hasPrior && e.hasData
	updatedAt := e.updatedAt
	c.mu.Unlock()

	if hasPrior {
		c.logger.Warn("refresh failed, serving last good value", zap.String("key", key.String()), zap.Error(res.Err))
		c.observe(key, OutcomeStale, start)
		return Result[T]{State: StateSuccess, Data: prior, UpdatedAt: updatedAt, FromCache: true, Stale: true}
	}
	c.observe(key, OutcomeError, start)
	return Result[T]{State: StateError, Err: res.Err}
}

func (c *Client) observe(key Key, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveQuery(key.Resource(), outcome, c.now().Sub(start))
}

func (c *Client) sharedEnabled() bool {
	return c.shared != nil && c.shared.Enabled()
}
