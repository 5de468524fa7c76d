package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/rshade/jirafocus/internal/config"
)

// lockRetryDelay is how often a busy settings lock is retried.
const lockRetryDelay = 50 * time.Millisecond

// FileBackend stores settings as a YAML document. Writes go through a
// temporary file and a rename; a sibling ".lock" file serializes access
// across processes.
type FileBackend struct {
	path string
	lock *flock.Flock
}

// NewFileBackend returns a backend for the YAML file at path. The file and
// its directory are created on the first Save.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("settings file path cannot be empty")
	}
	return &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the settings file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load overlays the YAML document onto dst. Keys absent from the document
// keep the values already in dst. A missing or empty file leaves dst as is.
func (b *FileBackend) Load(ctx context.Context, dst *config.Settings) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o750); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	locked, err := b.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring settings read lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire read lock on %s", b.path)
	}
	defer func() { _ = b.lock.Unlock() }()

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading settings file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err = yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing settings file %s: %w", b.path, err)
	}
	return nil
}

// Save writes the full record atomically.
func (b *FileBackend) Save(ctx context.Context, s config.Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(b.path), 0o750); mkdirErr != nil {
		return fmt.Errorf("creating settings directory: %w", mkdirErr)
	}

	locked, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring settings lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire lock on %s", b.path)
	}
	defer func() { _ = b.lock.Unlock() }()

	tmpPath := b.path + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing settings temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, b.path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming settings temp file: %w", renameErr)
	}
	return nil
}
