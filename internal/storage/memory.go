// Package storage provides settings backends: a YAML file, a SQLite
// key/value table and an in-memory record.
package storage

import (
	"context"
	"sync"

	"github.com/rshade/jirafocus/internal/config"
)

// MemoryBackend keeps the last saved record in memory. It is used for
// ephemeral sessions and tests.
type MemoryBackend struct {
	mu    sync.Mutex
	saved *config.Settings
	saves int
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load copies the saved record onto dst, if there is one.
func (b *MemoryBackend) Load(_ context.Context, dst *config.Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saved != nil {
		colors := dst.StatusColorCache
		*dst = b.saved.Clone()
		dst.StatusColorCache = colors
	}
	return nil
}

// Save stores a copy of s.
func (b *MemoryBackend) Save(_ context.Context, s config.Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := s.Clone()
	b.saved = &c
	b.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
