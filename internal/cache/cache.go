package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TTLFunc resolves the current time-to-live. It is called once per Get so
// that settings changes apply to entries already in the cache.
type TTLFunc func() (time.Duration, error)

// FixedTTL returns a TTLFunc that always yields d.
func FixedTTL(d time.Duration) TTLFunc {
	return func() (time.Duration, error) { return d, nil }
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

// WithClock replaces time.Now as the source of entry timestamps and freshness checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for TTL resolution failures.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Cache is a keyed store of entries with lazy TTL expiry.
// It is safe for concurrent use; a single mutex serializes reads and writes.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]

	ttl    TTLFunc
	now    func() time.Time
	logger zerolog.Logger
}

// New creates an empty cache whose freshness window is resolved through ttl.
func New[T any](ttl TTLFunc, opts ...Option) *Cache[T] {
	o := options{now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl == nil {
		ttl = FixedTTL(0)
	}

	return &Cache[T]{
		entries: make(map[string]Entry[T]),
		ttl:     ttl,
		now:     o.now,
		logger:  o.logger,
	}
}

// Add stores value under key with the current time, replacing any previous entry.
func (c *Cache[T]) Add(key string, value T) Entry[T] {
	return c.put(Entry[T]{Key: key, Value: value})
}

// AddError records a failure under key. Subsequent Gets return the failure
// until it goes stale.
func (c *Cache[T]) AddError(key string, err error) Entry[T] {
	return c.put(Entry[T]{Key: key, IsError: true, Err: err})
}

func (c *Cache[T]) put(e Entry[T]) Entry[T] {
	e.CreatedAt = c.now()

	c.mu.Lock()
	c.entries[e.Key] = e
	c.mu.Unlock()

	return e
}

// Get returns the entry for key when it exists and is younger than the
// current TTL. A miss, a stale entry and a TTL that cannot be resolved all
// report false; callers compute the value and Add it.
func (c *Cache[T]) Get(key string) (Entry[T], bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry[T]{}, false
	}

	ttl, err := c.ttl()
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cannot resolve cache TTL, treating entry as stale")
		return Entry[T]{}, false
	}

	if !e.FreshAt(c.now(), ttl) {
		return Entry[T]{}, false
	}
	return e, true
}

// DisplayTime returns the formatted creation time of key regardless of its
// freshness, for "last updated" labels.
func (c *Cache[T]) DisplayTime(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	return e.DisplayTime(), true
}

// Clear discards every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry[T])
	c.mu.Unlock()
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries lists every stored entry sorted by key, with its freshness under
// the current TTL.
func (c *Cache[T]) Entries() []Info {
	ttl, err := c.ttl()
	if err != nil {
		ttl = 0
	}
	now := c.now()

	c.mu.RLock()
	infos := make([]Info, 0, len(c.entries))
	for _, e := range c.entries {
		infos = append(infos, Info{
			Key:       e.Key,
			CreatedAt: e.CreatedAt,
			IsError:   e.IsError,
			Fresh:     e.FreshAt(now, ttl),
		})
	}
	c.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}
