// Package migration copies settings from one backend to another.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rshade/jirafocus/internal/config"
)

// ErrSameEndpoint is returned when source and destination are the same location.
var ErrSameEndpoint = errors.New("source and destination are the same")

// Endpoint is a named settings backend.
type Endpoint struct {
	Name    string
	Backend config.Backend
}

// Options controls Run.
type Options struct {
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
	Logger    zerolog.Logger
}

// Run copies the settings held by src into dst. The source is left as it
// was. Unless AssumeYes is set it asks on out/in first; any answer other
// than y or yes skips the copy. It reports whether dst was written.
func Run(ctx context.Context, out io.Writer, in io.Reader, src, dst Endpoint, opts Options) (bool, error) {
	if src.Name == dst.Name {
		return false, fmt.Errorf("%w: %s", ErrSameEndpoint, src.Name)
	}
	if src.Backend == nil || dst.Backend == nil {
		return false, config.ErrNilBackend
	}

	settings := config.Default()
	if err := src.Backend.Load(ctx, &settings); err != nil {
		return false, fmt.Errorf("reading settings from %s: %w", src.Name, err)
	}
	if err := settings.Validate(); err != nil {
		return false, fmt.Errorf("settings in %s are invalid: %w", src.Name, err)
	}

	if !opts.AssumeYes && !confirm(out, in, src.Name, dst.Name) {
		fmt.Fprintln(out, "Migration skipped.")
		return false, nil
	}

	if err := dst.Backend.Save(ctx, settings); err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}
	opts.Logger.Info().Str("from", src.Name).Str("to", dst.Name).Msg("settings migrated")
	fmt.Fprintf(out, "Migration complete. The settings in %s are preserved.\n", src.Name)
	return true, nil
}

func confirm(out io.Writer, in io.Reader, from, to string) bool {
	fmt.Fprintf(out, "Copy the settings from %s to %s? [y/N] ", from, to)

	var response string
	if _, err := fmt.Fscanln(in, &response); err != nil {
		// Unreadable input counts as no.
		response = ""
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
