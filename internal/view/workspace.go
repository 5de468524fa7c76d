package view

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownKind is returned when no factory is registered for a kind.
	ErrUnknownKind = errors.New("unknown view kind")
	// ErrNoSuchInstance is returned when a handle does not name a live view.
	ErrNoSuchInstance = errors.New("no such view instance")
)

// View is a panel hosted by the workspace.
type View interface {
	Kind() Kind
	DisplayText() string
	Open(ctx context.Context) error
	Close() error
	Render(width int) string
}

// Factory builds a view for a new instance.
type Factory func(h Handle) View

type instance struct {
	handle Handle
	view   View
}

// Workspace is an in-memory Host. The host itself allows several instances
// of a kind; the single-instance policy lives in Activator.
type Workspace struct {
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	factories map[Kind]Factory
	instances []instance
	focused   Handle
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(logger zerolog.Logger) *Workspace {
	return &Workspace{
		logger:    logger,
		now:       time.Now,
		factories: make(map[Kind]Factory),
	}
}

// Register installs the factory for kind, replacing any previous one.
func (w *Workspace) Register(kind Kind, f Factory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.factories[kind] = f
}

// Registered reports whether kind has a factory.
func (w *Workspace) Registered(kind Kind) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.factories[kind]
	return ok
}

// DetachAllOfKind closes and removes every instance of kind.
func (w *Workspace) DetachAllOfKind(kind Kind) int {
	w.mu.Lock()
	var detached []instance
	kept := w.instances[:0]
	for _, inst := range w.instances {
		if inst.handle.Kind == kind {
			detached = append(detached, inst)
			continue
		}
		kept = append(kept, inst)
	}
	w.instances = kept
	if w.focused.Kind == kind {
		w.focused = Handle{}
	}
	w.mu.Unlock()

	for _, inst := range detached {
		if err := inst.view.Close(); err != nil {
			w.logger.Warn().Err(err).Str("view", inst.handle.String()).Msg("closing view")
		}
	}
	return len(detached)
}

// CreateInstance builds and opens a new view of kind.
func (w *Workspace) CreateInstance(ctx context.Context, kind Kind) (Handle, error) {
	w.mu.Lock()
	factory, ok := w.factories[kind]
	w.mu.Unlock()
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	h := newHandle(kind, w.now())
	v := factory(h)
	if err := v.Open(ctx); err != nil {
		return Handle{}, fmt.Errorf("opening %s: %w", kind, err)
	}

	w.mu.Lock()
	w.instances = append(w.instances, instance{handle: h, view: v})
	w.mu.Unlock()
	return h, nil
}

// Focus makes h the focused view.
func (w *Workspace) Focus(h Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.indexOf(h) < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchInstance, h)
	}
	w.focused = h
	return nil
}

// Instances returns the live handles of kind in creation order.
func (w *Workspace) Instances(kind Kind) []Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Handle
	for _, inst := range w.instances {
		if inst.handle.Kind == kind {
			out = append(out, inst.handle)
		}
	}
	return out
}

// Handles returns every live handle in creation order.
func (w *Workspace) Handles() []Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Handle, 0, len(w.instances))
	for _, inst := range w.instances {
		out = append(out, inst.handle)
	}
	return out
}

// View returns the view behind h.
func (w *Workspace) View(h Handle) (View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexOf(h); i >= 0 {
		return w.instances[i].view, true
	}
	return nil, false
}

// Focused returns the focused view, if any.
func (w *Workspace) Focused() (Handle, View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexOf(w.focused); i >= 0 {
		return w.instances[i].handle, w.instances[i].view, true
	}
	return Handle{}, nil, false
}

// Kinds returns the registered kinds, sorted.
func (w *Workspace) Kinds() []Kind {
	w.mu.Lock()
	defer w.mu.Unlock()
	kinds := make([]Kind, 0, len(w.factories))
	for k := range w.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func (w *Workspace) indexOf(h Handle) int {
	if h.IsZero() {
		return -1
	}
	return slices.IndexFunc(w.instances, func(inst instance) bool {
		return inst.handle.ID == h.ID
	})
}
