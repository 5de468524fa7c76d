package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilFetcher is returned by GetOrFetch when no upstream function is given.
var ErrNilFetcher = errors.New("cache fetcher cannot be nil")

// FetchError reports an upstream failure for a key. Cached is true when the
// failure was served from the cache instead of a new upstream call.
type FetchError struct {
	Key    string
	Cached bool
	Err    error
}

func (e *FetchError) Error() string {
	if e.Cached {
		return fmt.Sprintf("fetching %s (cached failure): %v", e.Key, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher loads the value for a cache miss.
type Fetcher[T any] func(ctx context.Context) (T, error)

// GetOrFetch returns the fresh cached value for key, or calls fetch and
// caches its result. Failures are cached as well and surfaced to the caller
// as *FetchError, so a failing upstream is called at most once per TTL window.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, fetch Fetcher[T]) (T, error) {
	var zero T
	if fetch == nil {
		return zero, ErrNilFetcher
	}

	if e, ok := c.Get(key); ok {
		if e.IsError {
			return zero, &FetchError{Key: key, Cached: true, Err: e.Err}
		}
		return e.Value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		c.AddError(key, err)
		return zero, &FetchError{Key: key, Err: err}
	}

	c.Add(key, value)
	return value, nil
}
