// Package app owns the lifecycle of the settings store, the issue caches,
// the Jira client and the view workspace.
package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/jirafocus/internal/cache"
	"github.com/rshade/jirafocus/internal/config"
	"github.com/rshade/jirafocus/internal/invalidate"
	"github.com/rshade/jirafocus/internal/jira"
	"github.com/rshade/jirafocus/internal/logging"
	"github.com/rshade/jirafocus/internal/view"
)

// Command IDs.
const (
	CommandClearCache    = "clear-cache"
	CommandOpenGraphView = "open-graph-view"
)

// NoticeCacheCleaned is emitted after the clear-cache command.
const NoticeCacheCleaned = "JiraIssue: Cache cleaned"

// DefaultSearchLimit is the page size used by Search.
const DefaultSearchLimit = 50

var (
	// ErrUnknownCommand is returned by RunCommand for unregistered IDs.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNotLoaded is returned when the app is used before Load or after Unload.
	ErrNotLoaded = errors.New("app is not loaded")
)

// Notifier shows a short message to the user.
type Notifier func(msg string)

// Command is a user-invocable action.
type Command struct {
	ID   string
	Name string
	run  func(ctx context.Context) error
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the root logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithNotifier sets where user notices go. The default logs them.
func WithNotifier(n Notifier) Option {
	return func(a *App) { a.notify = n }
}

// WithHTTPClient sets the base HTTP client of the Jira client.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) { a.httpClient = hc }
}

// WithClock sets the clock of the caches.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithoutPriming skips priming the dependent caches on Load.
func WithoutPriming() Option {
	return func(a *App) { a.primeOnLoad = false }
}

// App wires the components together. Load and Unload must not run
// concurrently with other calls.
type App struct {
	backend     config.Backend
	logger      zerolog.Logger
	notify      Notifier
	httpClient  *http.Client
	now         func() time.Time
	primeOnLoad bool

	Store       *config.Store
	Issues      *cache.Cache[*jira.Issue]
	Searches    *cache.Cache[*jira.SearchResults]
	Client      *jira.Client
	Coordinator *invalidate.Coordinator
	Workspace   *view.Workspace
	Activator   *view.Activator

	commands    map[string]Command
	unsubscribe func()
}

// New returns an unloaded app that persists settings through backend.
func New(backend config.Backend, opts ...Option) *App {
	a := &App{
		backend:     backend,
		logger:      zerolog.Nop(),
		now:         time.Now,
		primeOnLoad: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notify == nil {
		a.notify = func(msg string) { a.logger.Info().Msg(msg) }
	}
	return a
}

// Load reads the settings, builds the caches and the client, starts priming
// the dependent caches and registers the views and commands.
func (a *App) Load(ctx context.Context) error {
	if a.backend == nil {
		return config.ErrNilBackend
	}

	store := config.NewStore(a.backend, config.WithStoreLogger(logging.ComponentLogger(a.logger, "settings")))
	settings, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cacheLog := logging.ComponentLogger(a.logger, "cache")
	a.Store = store
	a.Issues = cache.New[*jira.Issue](store.TTL, cache.WithClock(a.now), cache.WithLogger(cacheLog))
	a.Searches = cache.New[*jira.SearchResults](store.TTL, cache.WithClock(a.now), cache.WithLogger(cacheLog))

	clientOpts := []jira.Option{jira.WithLogger(logging.ComponentLogger(a.logger, "jira"))}
	if a.httpClient != nil {
		clientOpts = append(clientOpts, jira.WithHTTPClient(a.httpClient))
	}
	a.Client = jira.NewClient(settings, clientOpts...)

	a.Coordinator = invalidate.New(
		[]invalidate.Clearer{a.Issues, a.Searches},
		[]invalidate.Primer{
			&clientPrimer{name: "custom-fields", client: a.Client, prime: a.Client.UpdateCustomFieldsCache},
			&clientPrimer{name: "jql-autocomplete", client: a.Client, prime: a.Client.UpdateJQLAutoCompleteCache},
		},
		invalidate.WithLogger(logging.ComponentLogger(a.logger, "invalidate")),
		invalidate.WithSettings(store.Snapshot),
	)
	if a.primeOnLoad {
		a.Coordinator.Prime(ctx)
	}
	a.unsubscribe = store.Subscribe(a.Coordinator.Listener())

	a.Workspace = view.NewWorkspace(logging.ComponentLogger(a.logger, "workspace"))
	a.Workspace.Register(view.KindGraph, view.GraphFactory(a.StatusCounts))
	a.Activator = view.NewActivator(a.Workspace, logging.ComponentLogger(a.logger, "activator"))

	a.commands = map[string]Command{
		CommandClearCache: {
			ID:   CommandClearCache,
			Name: "Clear cache",
			run:  a.clearCache,
		},
		CommandOpenGraphView: {
			ID:   CommandOpenGraphView,
			Name: "Open graph view",
			run: func(ctx context.Context) error {
				_, activateErr := a.Activator.Activate(ctx, view.KindGraph)
				return activateErr
			},
		},
	}

	a.logger.Debug().Str("host", settings.Host).Msg("loaded")
	return nil
}

func (a *App) clearCache(ctx context.Context) error {
	a.Coordinator.Invalidate(ctx, invalidate.ReasonUserCommand)
	a.notify(NoticeCacheCleaned)
	return nil
}

// Commands returns the registered commands sorted by ID.
func (a *App) Commands() []Command {
	out := make([]Command, 0, len(a.commands))
	for _, c := range a.commands {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y Command) int { return cmp.Compare(x.ID, y.ID) })
	return out
}

// RunCommand runs the command with the given ID.
func (a *App) RunCommand(ctx context.Context, id string) error {
	if a.commands == nil {
		return ErrNotLoaded
	}
	cmd, ok := a.commands[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	return cmd.run(ctx)
}

// Issue returns an issue, reading through the issue cache.
func (a *App) Issue(ctx context.Context, key string) (*jira.Issue, error) {
	if a.Issues == nil {
		return nil, ErrNotLoaded
	}
	issue, err := a.Issues.GetOrFetch(ctx, cache.Key("issue", key), func(ctx context.Context) (*jira.Issue, error) {
		return a.Client.GetIssue(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	if name, color := issue.StatusName(), issue.StatusColor(); name != "" && color != "" {
		a.Store.RememberStatusColor(name, color)
	}
	return issue, nil
}

// Search runs a JQL query, reading through the search cache.
func (a *App) Search(ctx context.Context, jql string, limit int) (*jira.SearchResults, error) {
	if a.Searches == nil {
		return nil, ErrNotLoaded
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	key := cache.KeyWithParams("search", map[string]string{"limit": strconv.Itoa(limit)}, jql)
	return a.Searches.GetOrFetch(ctx, key, func(ctx context.Context) (*jira.SearchResults, error) {
		return a.Client.Search(ctx, jql, limit)
	})
}

// StatusCounts counts the fresh cached issues per status.
func (a *App) StatusCounts() map[string]int {
	counts := make(map[string]int)
	if a.Issues == nil {
		return counts
	}
	for _, info := range a.Issues.Entries() {
		if !info.Fresh || info.IsError {
			continue
		}
		entry, ok := a.Issues.Get(info.Key)
		if !ok || entry.IsError {
			continue
		}
		status := entry.Value.StatusName()
		if status == "" {
			status = "Unknown"
		}
		counts[status]++
	}
	return counts
}

// Unload detaches the views, stops listening for settings changes, waits
// for in-flight priming and drops every component.
func (a *App) Unload() {
	if a.Activator != nil {
		a.Activator.Teardown(view.KindGraph)
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.Coordinator != nil {
		a.Coordinator.Wait()
	}

	a.Store = nil
	a.Issues = nil
	a.Searches = nil
	a.Client = nil
	a.Coordinator = nil
	a.Workspace = nil
	a.Activator = nil
	a.commands = nil
	a.unsubscribe = nil
	a.logger.Debug().Msg("unloaded")
}

// clientPrimer reloads one of the client's dependent caches.
type clientPrimer struct {
	name   string
	client *jira.Client
	prime  func(ctx context.Context) error
}

func (p *clientPrimer) Name() string { return p.name }

func (p *clientPrimer) Prime(ctx context.Context) error { return p.prime(ctx) }

func (p *clientPrimer) Configure(settings config.Settings) { p.client.Configure(settings) }
