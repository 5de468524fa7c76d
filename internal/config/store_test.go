package config

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/jirafocus/internal/duration"
)

// fakeBackend keeps a record in memory and can be told to fail.
type fakeBackend struct {
	mu       sync.Mutex
	stored   map[string]string
	saves    int
	saveErr  error
	loadErr  error
	lastSave Settings
}

func newFakeBackend(stored map[string]string) *fakeBackend {
	return &fakeBackend{stored: stored}
}

func (b *fakeBackend) Load(_ context.Context, dst *Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return b.loadErr
	}
	for k, v := range b.stored {
		if err := dst.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *fakeBackend) Save(_ context.Context, s Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	b.lastSave = s
	b.stored = map[string]string{}
	for _, key := range Keys() {
		v, _ := s.Get(key)
		b.stored[key] = v
	}
	return nil
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("first run uses defaults", func(t *testing.T) {
		store := NewStore(newFakeBackend(nil))
		got, err := store.Load(ctx)
		require.NoError(t, err)

		want := Default()
		assert.Equal(t, want.Host, got.Host)
		assert.Equal(t, AuthOpen, got.AuthenticationType)
		assert.Equal(t, DefaultAPIBasePath, got.APIBasePath)
		assert.Equal(t, DefaultCacheTime, got.CacheTime)
		assert.False(t, got.DarkMode)
		assert.Empty(t, got.StatusColorCache)
	})

	t.Run("persisted fields override defaults", func(t *testing.T) {
		store := NewStore(newFakeBackend(map[string]string{
			KeyHost:      "https://jira.example.com",
			KeyCacheTime: "24h",
		}))
		got, err := store.Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, "https://jira.example.com", got.Host)
		assert.Equal(t, "24h", got.CacheTime)
		assert.Equal(t, DefaultAPIBasePath, got.APIBasePath, "absent field keeps its default")
	})

	t.Run("status colors reset on load", func(t *testing.T) {
		store := NewStore(newFakeBackend(nil))
		store.RememberStatusColor("Done", "green")
		_, err := store.Load(ctx)
		require.NoError(t, err)

		_, ok := store.StatusColor("Done")
		assert.False(t, ok)
	})

	t.Run("backend failure", func(t *testing.T) {
		backend := newFakeBackend(nil)
		backend.loadErr = errors.New("disk on fire")
		store := NewStore(backend)

		got, err := store.Load(ctx)
		var persistErr *PersistError
		require.ErrorAs(t, err, &persistErr)
		assert.Equal(t, "load", persistErr.Op)
		assert.Equal(t, DefaultHost, got.Host)
	})

	t.Run("invalid persisted record", func(t *testing.T) {
		store := NewStore(newFakeBackend(map[string]string{KeyCacheTime: "bad"}))
		got, err := store.Load(ctx)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.ErrorIs(t, err, ErrInvalidSettings)
		assert.Contains(t, err.Error(), KeyCacheTime)
		assert.Equal(t, "bad", got.CacheTime)

		_, ttlErr := store.TTL()
		require.Error(t, ttlErr, "the bad record stays loaded")

		require.NoError(t, store.SetCacheTime(ctx, "1h"), "a setter repairs it")
		ttl, ttlErr := store.TTL()
		require.NoError(t, ttlErr)
		assert.Equal(t, time.Hour, ttl)
	})

	t.Run("nil backend", func(t *testing.T) {
		_, err := NewStore(nil).Load(ctx)
		assert.ErrorIs(t, err, ErrNilBackend)
	})
}

func TestStore_SaveNotifies(t *testing.T) {
	ctx := context.Background()

	t.Run("no listener", func(t *testing.T) {
		backend := newFakeBackend(nil)
		store := NewStore(backend)
		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 1, backend.saves)
	})

	t.Run("legacy listener once per save", func(t *testing.T) {
		store := NewStore(newFakeBackend(nil))
		calls := 0
		store.OnChange(func() { calls++ })

		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 1, calls)
		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 2, calls)
	})

	t.Run("legacy listener is replaced", func(t *testing.T) {
		store := NewStore(newFakeBackend(nil))
		first, second := 0, 0
		store.OnChange(func() { first++ })
		store.OnChange(func() { second++ })

		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)

		store.OnChange(nil)
		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 1, second)
	})

	t.Run("subscribers and unsubscribe", func(t *testing.T) {
		store := NewStore(newFakeBackend(nil))
		a, b := 0, 0
		unsubA := store.Subscribe(func() { a++ })
		store.Subscribe(func() { b++ })

		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 1, a)
		assert.Equal(t, 1, b)

		unsubA()
		unsubA()
		require.NoError(t, store.Save(ctx))
		assert.Equal(t, 1, a)
		assert.Equal(t, 2, b)
	})

	t.Run("listener runs after persistence", func(t *testing.T) {
		backend := newFakeBackend(nil)
		store := NewStore(backend)
		var savesSeen int
		store.OnChange(func() { savesSeen = backend.saves })

		require.NoError(t, store.SetDarkMode(ctx, true))
		assert.Equal(t, 1, savesSeen)
		assert.True(t, backend.lastSave.DarkMode)
	})
}

func TestStore_SaveFailure(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	backend.saveErr = errors.New("read-only file system")
	store := NewStore(backend)
	calls := 0
	store.OnChange(func() { calls++ })

	err := store.SetHost(ctx, "https://jira.example.com")

	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "save", persistErr.Op)
	assert.ErrorIs(t, err, backend.saveErr)
	assert.Equal(t, 0, calls)

	// The in-memory record keeps the new value even though it was not stored.
	assert.Equal(t, "https://jira.example.com", store.Snapshot().Host)
	assert.Empty(t, backend.stored)
}

func TestStore_Setters(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	store := NewStore(backend)
	_, err := store.Load(ctx)
	require.NoError(t, err)

	calls := 0
	store.Subscribe(func() { calls++ })

	require.NoError(t, store.SetHost(ctx, "https://jira.example.com"))
	require.NoError(t, store.SetUsername(ctx, "alice"))
	require.NoError(t, store.SetPassword(ctx, "s3cret"))
	require.NoError(t, store.SetAuthenticationType(ctx, AuthBasic))
	require.NoError(t, store.SetBearerToken(ctx, "tok"))
	require.NoError(t, store.SetAPIBasePath(ctx, "/rest/api/2"))
	require.NoError(t, store.SetCacheTime(ctx, "1h"))
	require.NoError(t, store.SetDarkMode(ctx, true))
	assert.Equal(t, 8, calls)
	assert.Equal(t, 8, backend.saves)

	got := store.Snapshot()
	assert.Equal(t, "https://jira.example.com", got.Host)
	assert.Equal(t, AuthBasic, got.AuthenticationType)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "s3cret", got.Password)
	assert.Equal(t, "tok", got.BearerToken, "inactive mode fields are kept")
	assert.Equal(t, "/rest/api/2", got.APIBasePath)
	assert.Equal(t, "1h", got.CacheTime)
	assert.True(t, got.DarkMode)
	assert.Equal(t, "1h", backend.stored[KeyCacheTime])
}

func TestStore_InvalidCacheTime(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	store := NewStore(backend)
	calls := 0
	store.OnChange(func() { calls++ })

	err := store.SetCacheTime(ctx, "bad")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.ErrorIs(t, err, duration.ErrInvalidDuration)
	assert.Contains(t, err.Error(), KeyCacheTime)

	assert.Equal(t, DefaultCacheTime, store.Snapshot().CacheTime)
	assert.Equal(t, 0, backend.saves)
	assert.Equal(t, 0, calls)
}

func TestStore_SetUnknownKey(t *testing.T) {
	store := NewStore(newFakeBackend(nil))
	err := store.Set(context.Background(), "colour", "blue")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestStore_TTLIsLive(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newFakeBackend(nil))

	ttl, err := store.TTL()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)

	require.NoError(t, store.SetCacheTime(ctx, "1s"))
	ttl, err = store.TTL()
	require.NoError(t, err)
	assert.Equal(t, time.Second, ttl)
}

func TestStore_Reload(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(map[string]string{KeyCacheTime: "15m"})
	store := NewStore(backend)
	_, err := store.Load(ctx)
	require.NoError(t, err)
	store.RememberStatusColor("Done", "green")

	calls := 0
	store.Subscribe(func() { calls++ })

	changed, err := store.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, calls)

	backend.stored[KeyCacheTime] = "30m"
	changed, err = store.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "30m", store.Snapshot().CacheTime)

	color, ok := store.StatusColor("Done")
	require.True(t, ok)
	assert.Equal(t, "green", color)

	backend.stored[KeyCacheTime] = "never"
	_, err = store.Reload(ctx)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, "30m", store.Snapshot().CacheTime)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	store := NewStore(newFakeBackend(nil))
	store.RememberStatusColor("Open", "blue")

	snap := store.Snapshot()
	snap.Host = "mutated"
	snap.StatusColorCache["Open"] = "red"

	assert.Equal(t, DefaultHost, store.Snapshot().Host)
	color, _ := store.StatusColor("Open")
	assert.Equal(t, "blue", color)
}
