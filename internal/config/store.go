package config

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Backend persists the settings record.
type Backend interface {
	// Load overlays the persisted fields onto dst. Fields absent from the
	// stored record are left untouched; a missing or empty record is not
	// an error.
	Load(ctx context.Context, dst *Settings) error

	// Save stores the full record.
	Save(ctx context.Context, s Settings) error
}

// Listener is called with no arguments after the settings changed.
type Listener func()

type subscription struct {
	id uint64
	fn Listener
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the store logger.
func WithStoreLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store owns the settings record, persists it through a Backend and
// notifies listeners after each successful save.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu      sync.RWMutex
	current Settings

	listenersMu sync.Mutex
	legacy      Listener
	listeners   []subscription
	nextID      uint64
}

// NewStore creates a store holding the default settings. Call Load to
// merge in the persisted record.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		logger:  zerolog.Nop(),
		current: Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory record with the defaults overlaid by the
// persisted record. The status color table always starts from the default.
//
// An invalid persisted record is still loaded, so it can be repaired with
// the setters, and the *ValidationError is returned.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	loaded, err := s.read(ctx)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	if err = loaded.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("persisted settings are invalid")
		return loaded.Clone(), err
	}

	s.logger.Debug().
		Str("host", loaded.Host).
		Str("authentication_type", string(loaded.AuthenticationType)).
		Str("cache_time", loaded.CacheTime).
		Msg("settings loaded")

	return loaded.Clone(), nil
}

// Reload re-reads the backend after an external edit. Listeners are
// notified only when a persisted field changed; the status color table is
// kept.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	loaded, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	if err = loaded.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("ignoring invalid settings from backend")
		return false, err
	}

	s.mu.Lock()
	changed := !samePersisted(s.current, loaded)
	if changed {
		loaded.StatusColorCache = s.current.StatusColorCache
		s.current = loaded
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info().Msg("settings changed on disk, reloaded")
		s.notify()
	}
	return changed, nil
}

func (s *Store) read(ctx context.Context) (Settings, error) {
	if s.backend == nil {
		return Settings{}, &PersistError{Op: "load", Err: ErrNilBackend}
	}

	loaded := Default()
	if err := s.backend.Load(ctx, &loaded); err != nil {
		return Settings{}, &PersistError{Op: "load", Err: err}
	}
	loaded.StatusColorCache = Default().StatusColorCache
	return loaded, nil
}

// Save persists the current record and then calls every registered
// listener once, synchronously. A backend failure is returned as
// *PersistError; the in-memory record is not rolled back and no listener
// is called.
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return &PersistError{Op: "save", Err: ErrNilBackend}
	}

	snapshot := s.Snapshot()
	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.logger.Error().Err(err).Msg("settings save failed; in-memory settings differ from stored settings")
		return &PersistError{Op: "save", Err: err}
	}

	s.notify()
	return nil
}

// Update applies fn to a copy of the record, validates the result and, if
// valid, commits it in memory and saves. An invalid result leaves the
// record untouched and returns a *ValidationError.
func (s *Store) Update(ctx context.Context, fn func(*Settings) error) error {
	s.mu.Lock()
	next := s.current.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	s.mu.Unlock()

	return s.Save(ctx)
}

// Set assigns one setting by key and saves.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, func(st *Settings) error { return st.Set(key, value) })
}

// SetHost sets the Jira server URL.
func (s *Store) SetHost(ctx context.Context, host string) error {
	return s.Set(ctx, KeyHost, host)
}

// SetAuthenticationType switches the active authentication mode.
func (s *Store) SetAuthenticationType(ctx context.Context, auth AuthenticationType) error {
	return s.Update(ctx, func(st *Settings) error {
		st.AuthenticationType = auth
		return nil
	})
}

// SetUsername sets the basic authentication user.
func (s *Store) SetUsername(ctx context.Context, username string) error {
	return s.Set(ctx, KeyUsername, username)
}

// SetPassword sets the basic authentication password.
func (s *Store) SetPassword(ctx context.Context, password string) error {
	return s.Set(ctx, KeyPassword, password)
}

// SetBearerToken sets the bearer token.
func (s *Store) SetBearerToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyBearerToken, token)
}

// SetAPIBasePath sets the REST API prefix.
func (s *Store) SetAPIBasePath(ctx context.Context, path string) error {
	return s.Set(ctx, KeyAPIBasePath, path)
}

// SetCacheTime sets the cache TTL. An unparsable value is rejected before
// anything is stored.
func (s *Store) SetCacheTime(ctx context.Context, cacheTime string) error {
	return s.Set(ctx, KeyCacheTime, cacheTime)
}

// SetDarkMode toggles dark mode rendering.
func (s *Store) SetDarkMode(ctx context.Context, dark bool) error {
	return s.Update(ctx, func(st *Settings) error {
		st.DarkMode = dark
		return nil
	})
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// TTL resolves the cache time of the current record. Caches call it on
// every read so a new cache time applies immediately.
func (s *Store) TTL() (time.Duration, error) {
	s.mu.RLock()
	cacheTime := s.current.CacheTime
	s.mu.RUnlock()
	return Settings{CacheTime: cacheTime}.TTL()
}

// RememberStatusColor records the color of an issue status. The table is
// not persisted and does not trigger listeners.
func (s *Store) RememberStatusColor(status, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.StatusColorCache == nil {
		s.current.StatusColorCache = map[string]string{}
	}
	s.current.StatusColorCache[status] = color
}

// StatusColor returns the remembered color of status.
func (s *Store) StatusColor(status string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.current.StatusColorCache[status]
	return c, ok
}

// OnChange registers the single legacy listener, replacing any previous
// one. Passing nil removes it.
func (s *Store) OnChange(fn Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.legacy = fn
}

// Subscribe adds a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id uint64) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// notify calls the legacy listener and then the subscribers, outside any lock.
func (s *Store) notify() {
	s.listenersMu.Lock()
	fns := make([]Listener, 0, len(s.listeners)+1)
	if s.legacy != nil {
		fns = append(fns, s.legacy)
	}
	for _, sub := range s.listeners {
		if sub.fn != nil {
			fns = append(fns, sub.fn)
		}
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
