// Package view enforces the single-instance policy for workspace views and
// provides the in-memory workspace that hosts them.
package view

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind names a view type, such as KindGraph.
type Kind string

// Handle identifies one live view instance.
type Handle struct {
	ID        ulid.ULID
	Kind      Kind
	CreatedAt time.Time
}

func newHandle(kind Kind, now time.Time) Handle {
	return Handle{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()),
		Kind:      kind,
		CreatedAt: now,
	}
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.ID == (ulid.ULID{})
}

func (h Handle) String() string {
	return string(h.Kind) + "/" + h.ID.String()
}
