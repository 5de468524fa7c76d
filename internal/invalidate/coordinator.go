// Package invalidate clears the data caches and re-primes the dependent
// caches when the settings change or the user asks for a clean slate.
package invalidate

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/jirafocus/internal/config"
)

// Reason says why an invalidation happened. It is logged with every pass.
type Reason string

const (
	// ReasonSettingsChanged is used by the store listener.
	ReasonSettingsChanged Reason = "settings-changed"
	// ReasonUserCommand is used by the clear-cache command.
	ReasonUserCommand Reason = "user-command"
)

// Clearer is a cache that can drop all of its entries.
type Clearer interface {
	Clear()
}

// Primer reloads a dependent cache from the upstream service.
type Primer interface {
	Name() string
	Prime(ctx context.Context) error
}

// Reconfigurable primers receive the new settings before priming on a
// settings change.
type Reconfigurable interface {
	Configure(settings config.Settings)
}

// PrimerFunc adapts a function to Primer.
type PrimerFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

// Name returns the label.
func (p PrimerFunc) Name() string { return p.Label }

// Prime calls Fn.
func (p PrimerFunc) Prime(ctx context.Context) error { return p.Fn(ctx) }

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithSettings sets the source of the settings snapshot handed to
// Reconfigurable primers.
func WithSettings(snapshot func() config.Settings) Option {
	return func(c *Coordinator) { c.snapshot = snapshot }
}

// WithContext sets the base context used by Listener.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.baseCtx = ctx }
}

// Coordinator owns the invalidation policy. Caches are cleared on the
// calling goroutine; priming runs in the background.
type Coordinator struct {
	caches  []Clearer
	primers []Primer

	logger   zerolog.Logger
	snapshot func() config.Settings
	baseCtx  context.Context

	wg     sync.WaitGroup
	passes atomic.Uint64
}

// New returns a coordinator for the given caches and primers.
func New(caches []Clearer, primers []Primer, opts ...Option) *Coordinator {
	c := &Coordinator{
		caches:  caches,
		primers: primers,
		logger:  zerolog.Nop(),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidate clears every cache and starts re-priming. It returns once the
// caches are empty, without waiting for priming.
func (c *Coordinator) Invalidate(ctx context.Context, reason Reason) {
	for _, cache := range c.caches {
		cache.Clear()
	}
	pass := c.passes.Add(1)

	c.logger.Info().
		Str("reason", string(reason)).
		Int("caches", len(c.caches)).
		Uint64("pass", pass).
		Msg("caches cleared")

	if reason == ReasonSettingsChanged && c.snapshot != nil {
		settings := c.snapshot()
		for _, p := range c.primers {
			if r, ok := p.(Reconfigurable); ok {
				r.Configure(settings)
			}
		}
	}

	c.start(ctx, pass)
}

// Prime starts re-priming without clearing anything. It is used once the
// caches have been built.
func (c *Coordinator) Prime(ctx context.Context) {
	c.start(ctx, c.passes.Load())
}

func (c *Coordinator) start(ctx context.Context, pass uint64) {
	if len(c.primers) == 0 {
		return
	}

	// Priming outlives the request that triggered it.
	primeCtx := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.prime(primeCtx, pass)
	}()
}

func (c *Coordinator) prime(ctx context.Context, pass uint64) {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, p := range c.primers {
		g.Go(func() error {
			if err := p.Prime(ctx); err != nil {
				c.logger.Warn().
					Err(err).
					Str("primer", p.Name()).
					Uint64("pass", pass).
					Msg("re-priming failed")
				return nil
			}
			c.logger.Debug().Str("primer", p.Name()).Uint64("pass", pass).Msg("re-primed")
			return nil
		})
	}
	_ = g.Wait()
}

// Listener returns a store listener that invalidates with ReasonSettingsChanged.
func (c *Coordinator) Listener() config.Listener {
	return func() {
		c.Invalidate(c.baseCtx, ReasonSettingsChanged)
	}
}

// Wait blocks until all started priming has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Passes returns how many invalidations have run.
func (c *Coordinator) Passes() uint64 {
	return c.passes.Load()
}
