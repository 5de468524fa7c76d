package config

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidAuthType = errors.New("invalid authentication type")
	ErrUnknownKey      = errors.New("unknown settings key")
	ErrNilBackend      = errors.New("settings backend cannot be nil")
)

// PersistError reports a settings backend failure. The in-memory record is
// kept as mutated, so it may differ from what is stored.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("settings %s failed: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
