package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/jirafocus/internal/config"
)

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	assert.Equal(t, path, backend.Path())

	t.Run("missing file leaves defaults", func(t *testing.T) {
		s := config.Default()
		require.NoError(t, backend.Load(ctx, &s))
		assert.Equal(t, config.DefaultHost, s.Host)
	})

	t.Run("save then load", func(t *testing.T) {
		want := config.Default()
		want.Host = "https://jira.example.com"
		want.AuthenticationType = config.AuthBearerToken
		want.BearerToken = "tok"
		want.DarkMode = true
		want.StatusColorCache["Done"] = "green"
		require.NoError(t, backend.Save(ctx, want))

		got := config.Default()
		require.NoError(t, backend.Load(ctx, &got))
		assert.Equal(t, want.Host, got.Host)
		assert.Equal(t, config.AuthBearerToken, got.AuthenticationType)
		assert.Equal(t, "tok", got.BearerToken)
		assert.True(t, got.DarkMode)
		assert.Empty(t, got.StatusColorCache, "derived table is not persisted")

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.NotContains(t, string(data), "green")
		assert.NoFileExists(t, path+".tmp")
	})

	t.Run("partial document is a shallow overlay", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("cache_time: 24h\n"), 0o600))

		got := config.Default()
		require.NoError(t, backend.Load(ctx, &got))
		assert.Equal(t, "24h", got.CacheTime)
		assert.Equal(t, config.DefaultHost, got.Host)
		assert.Equal(t, config.DefaultAPIBasePath, got.APIBasePath)
	})

	t.Run("empty file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
		got := config.Default()
		require.NoError(t, backend.Load(ctx, &got))
		assert.Equal(t, config.DefaultCacheTime, got.CacheTime)
	})

	t.Run("corrupt file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("host: [unclosed\n"), 0o600))
		got := config.Default()
		assert.Error(t, backend.Load(ctx, &got))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFileBackend("")
		assert.Error(t, err)
	})
}

func TestFileBackend_WithStore(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	store := config.NewStore(backend)
	_, err = store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SetCacheTime(ctx, "1h"))

	reloaded := config.NewStore(backend)
	got, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1h", got.CacheTime)
}

func TestFileBackend_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	var changes atomic.Int32
	require.NoError(t, backend.Watch(ctx, 20*time.Millisecond, zerolog.Nop(), func() { changes.Add(1) }))

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0o600))
	require.NoError(t, backend.Save(ctx, config.Default()))

	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	empty := config.Default()
	require.NoError(t, backend.Load(ctx, &empty))
	assert.Equal(t, config.DefaultHost, empty.Host)

	want := config.Default()
	want.AuthenticationType = config.AuthBasic
	want.Username = "alice"
	want.Password = "s3cret"
	want.CacheTime = "5s"
	require.NoError(t, backend.Save(ctx, want))

	want.CacheTime = "10s"
	require.NoError(t, backend.Save(ctx, want))

	got := config.Default()
	require.NoError(t, backend.Load(ctx, &got))
	assert.Equal(t, config.AuthBasic, got.AuthenticationType)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "s3cret", got.Password)
	assert.Equal(t, "10s", got.CacheTime)

	_, err = backend.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('legacy_columns', 'x')`)
	require.NoError(t, err)
	assert.NoError(t, backend.Load(ctx, &got), "unknown keys are skipped")
}

func TestSQLiteBackend_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	backend, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	s := config.Default()
	s.DarkMode = true
	require.NoError(t, backend.Save(ctx, s))
	require.NoError(t, backend.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got := config.Default()
	require.NoError(t, reopened.Load(ctx, &got))
	assert.True(t, got.DarkMode)
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	s := config.Default()
	require.NoError(t, backend.Load(ctx, &s))
	assert.Equal(t, config.DefaultHost, s.Host)

	s.Host = "https://jira.example.com"
	require.NoError(t, backend.Save(ctx, s))
	assert.Equal(t, 1, backend.Saves())

	got := config.Default()
	require.NoError(t, backend.Load(ctx, &got))
	assert.Equal(t, "https://jira.example.com", got.Host)
}
