package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/jirafocus/internal/app"
	"github.com/rshade/jirafocus/internal/config"
	"github.com/rshade/jirafocus/internal/logging"
	"github.com/rshade/jirafocus/internal/storage"
)

// Environment variables read by the CLI.
const (
	EnvConfig  = "JIRAFOCUS_CONFIG"
	EnvBackend = "JIRAFOCUS_BACKEND"
)

// Settings backend names accepted by --backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	settingsDirName  = ".jirafocus"
	settingsFileName = "settings.yaml"
	settingsDBName   = "settings.db"
)

var errUnknownBackend = errors.New("unknown settings backend")

// flagOrEnv returns the flag value when set, otherwise the environment value.
func flagOrEnv(cmd *cobra.Command, flag, env string, lookupEnv func(string) (string, bool)) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v, ok := lookupEnv(env); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func backendKind(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (string, error) {
	kind := strings.ToLower(flagOrEnv(cmd, "backend", EnvBackend, lookupEnv))
	switch kind {
	case "":
		return BackendFile, nil
	case BackendFile, BackendSQLite, BackendMemory:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s, %s or %s)", errUnknownBackend, kind, BackendFile, BackendSQLite, BackendMemory)
	}
}

// settingsPath resolves the settings location from --config, the
// environment, or the default under the home directory.
func settingsPath(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (string, error) {
	if p := flagOrEnv(cmd, "config", EnvConfig, lookupEnv); p != "" {
		return p, nil
	}

	kind, err := backendKind(cmd, lookupEnv)
	if err != nil {
		return "", err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	name := settingsFileName
	if kind == BackendSQLite {
		name = settingsDBName
	}
	return filepath.Join(home, settingsDirName, name), nil
}

func settingsDir(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (string, error) {
	p, err := settingsPath(cmd, lookupEnv)
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// openedBackend is a settings backend plus what the commands need to
// report on it and release it.
type openedBackend struct {
	config.Backend
	kind  string
	path  string
	file  *storage.FileBackend
	close func() error
}

func (b *openedBackend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

func openBackend(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*openedBackend, error) {
	kind, err := backendKind(cmd, lookupEnv)
	if err != nil {
		return nil, err
	}
	if kind == BackendMemory {
		return openBackendAt(cmd.Context(), kind, "")
	}
	path, err := settingsPath(cmd, lookupEnv)
	if err != nil {
		return nil, err
	}
	return openBackendAt(cmd.Context(), kind, path)
}

func openBackendAt(ctx context.Context, kind, path string) (*openedBackend, error) {
	switch kind {
	case BackendMemory:
		return &openedBackend{Backend: storage.NewMemoryBackend(), kind: kind}, nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating settings directory: %w", err)
		}
		db, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return &openedBackend{Backend: db, kind: kind, path: path, close: db.Close}, nil
	default:
		fb, err := storage.NewFileBackend(path)
		if err != nil {
			return nil, err
		}
		return &openedBackend{Backend: fb, kind: kind, path: path, file: fb}, nil
	}
}

// defaultPathFor returns the default settings location for a backend kind,
// next to the settings currently in use.
func defaultPathFor(cmd *cobra.Command, lookupEnv func(string) (string, bool), kind string) (string, error) {
	dir, err := settingsDir(cmd, lookupEnv)
	if err != nil {
		return "", err
	}
	if kind == BackendSQLite {
		return filepath.Join(dir, settingsDBName), nil
	}
	return filepath.Join(dir, settingsFileName), nil
}

// openStore opens the backend and loads a settings store from it. Invalid
// settings are reported as a warning.
func openStore(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Store, *openedBackend, error) {
	backend, err := openBackend(cmd, lookupEnv)
	if err != nil {
		return nil, nil, err
	}
	log := logging.FromContext(cmd.Context())
	store := config.NewStore(backend, config.WithStoreLogger(logging.ComponentLogger(*log, "settings")))
	if _, err = store.Load(cmd.Context()); err != nil {
		// An invalid record stays loaded so the config commands can fix it.
		var validationErr *config.ValidationError
		if !errors.As(err, &validationErr) {
			_ = backend.Close()
			return nil, nil, err
		}
		cmd.PrintErrf("Warning: %v\n", err)
	}
	return store, backend, nil
}

// loadApp opens the backend and loads the app on top of it.
func loadApp(cmd *cobra.Command, lookupEnv func(string) (string, bool), opts ...app.Option) (*app.App, *openedBackend, error) {
	backend, err := openBackend(cmd, lookupEnv)
	if err != nil {
		return nil, nil, err
	}
	log := logging.FromContext(cmd.Context())
	opts = append([]app.Option{app.WithLogger(*log)}, opts...)

	a := app.New(backend, opts...)
	if err = a.Load(cmd.Context()); err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return a, backend, nil
}
