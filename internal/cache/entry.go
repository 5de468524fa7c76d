package cache

import (
	"time"

	"github.com/dustin/go-humanize"
)

// DisplayTimeLayout is the layout used by DisplayTime, e.g. "Thu, Sep 4, 1986 8:30 PM".
const DisplayTimeLayout = "Mon, Jan 2, 2006 3:04 PM"

// Entry is a single cached value. Entries are immutable once stored; a
// later Add for the same key stores a new Entry.
type Entry[T any] struct {
	// Key is the caller-supplied cache key.
	Key string

	// CreatedAt is the cache clock reading at insertion.
	CreatedAt time.Time

	// Value is the cached payload. It is the zero value for failures.
	Value T

	// IsError marks the entry as a recorded failure.
	IsError bool

	// Err is the recorded failure when IsError is set.
	Err error
}

// Age returns how long ago the entry was stored, relative to now.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// FreshAt reports whether the entry is still fresh at now under ttl.
func (e Entry[T]) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}

// Relative returns a humanized age such as "3 minutes ago".
func (e Entry[T]) Relative(now time.Time) string {
	return humanize.RelTime(e.CreatedAt, now, "ago", "from now")
}

// DisplayTime formats CreatedAt for "last updated" labels.
func (e Entry[T]) DisplayTime() string {
	return e.CreatedAt.Format(DisplayTimeLayout)
}

// Info describes an entry for listings, without its payload.
type Info struct {
	Key       string
	CreatedAt time.Time
	IsError   bool
	Fresh     bool
}
