package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// State is the observable state of a view kind.
type State int

const (
	// Absent means no instance of the kind is open.
	Absent State = iota
	// Active means exactly one instance is open and was focused on activation.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "absent"
}

// Host is the workspace that owns view instances.
type Host interface {
	// DetachAllOfKind closes every instance of kind and returns how many
	// were closed.
	DetachAllOfKind(kind Kind) int
	CreateInstance(ctx context.Context, kind Kind) (Handle, error)
	Focus(h Handle) error
	Instances(kind Kind) []Handle
}

// Activator keeps at most one instance of each view kind alive. Activate
// and Teardown are serialized, so concurrent commands cannot interleave
// their detach and create steps.
type Activator struct {
	mu     sync.Mutex
	host   Host
	logger zerolog.Logger
}

// NewActivator returns an activator for host.
func NewActivator(host Host, logger zerolog.Logger) *Activator {
	return &Activator{host: host, logger: logger}
}

// Activate detaches every instance of kind, creates a new one and focuses
// it. If creation fails the kind is left Absent.
func (a *Activator) Activate(ctx context.Context, kind Kind) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := a.host.DetachAllOfKind(kind); n > 0 {
		a.logger.Debug().Str("kind", string(kind)).Int("detached", n).Msg("detached previous views")
	}

	h, err := a.host.CreateInstance(ctx, kind)
	if err != nil {
		return Handle{}, fmt.Errorf("creating %s view: %w", kind, err)
	}
	if err = a.host.Focus(h); err != nil {
		return h, fmt.Errorf("focusing %s view: %w", kind, err)
	}

	a.logger.Info().Str("kind", string(kind)).Str("id", h.ID.String()).Msg("view activated")
	return h, nil
}

// State reports whether kind has a live instance.
func (a *Activator) State(kind Kind) State {
	if len(a.host.Instances(kind)) > 0 {
		return Active
	}
	return Absent
}

// Teardown detaches every instance of the given kinds. It is called on
// shutdown and returns the number of instances closed.
func (a *Activator) Teardown(kinds ...Kind) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0
	for _, kind := range kinds {
		total += a.host.DetachAllOfKind(kind)
	}
	return total
}
