// Package logging builds the zerolog loggers used across jirafocus and
// carries them through context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output and format names accepted by Config.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"

	FormatConsole = "console"
	FormatJSON    = "json"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "JIRAFOCUS_LOG_LEVEL"

// Config describes how a logger should be built.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	File   string `yaml:"file"`
	Caller bool   `yaml:"caller"`
}

// DefaultConfig returns info-level console logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  zerolog.InfoLevel.String(),
		Format: FormatConsole,
		Output: OutputStderr,
	}
}

// Result is the outcome of NewLogger. Close must be called to release the
// log file when one was opened.
type Result struct {
	Logger    zerolog.Logger
	UsingFile bool
	FilePath  string
	file      *os.File
}

// Close releases the log file, if any.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a logger from cfg writing to stderr by default.
// An unparsable level falls back to info. A file output that cannot be
// opened falls back to stderr and reports the reason through the returned error.
func NewLogger(cfg Config) (*Result, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, stderr io.Writer) (*Result, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	result := &Result{}
	var out io.Writer = stderr
	var fallbackErr error

	if cfg.Output == OutputFile && cfg.File != "" {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.File), 0o750); mkErr != nil {
			fallbackErr = fmt.Errorf("creating log directory: %w", mkErr)
		} else {
			f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if openErr != nil {
				fallbackErr = fmt.Errorf("opening log file: %w", openErr)
			} else {
				result.file = f
				result.UsingFile = true
				result.FilePath = cfg.File
				out = f
			}
		}
	}

	if cfg.Format != FormatJSON && !result.UsingFile {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	result.Logger = ctx.Logger()

	return result, fallbackErr
}

// ComponentLogger returns a child logger tagged with the component name.
func ComponentLogger(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
