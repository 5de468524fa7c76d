package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/jirafocus/internal/logging"
)

// logFileName is used when the workspace owns the terminal.
const logFileName = "jirafocus.log"

// setupLogging configures logging from the defaults, the environment and CLI flags,
// and stores the logger in the command context.
func setupLogging(cmd *cobra.Command, lookupEnv func(string) (string, bool)) *logging.Result {
	loggingCfg := logging.DefaultConfig()
	loggingCfg.Level = "warn"

	debug, _ := cmd.Flags().GetBool("debug")
	if envLevel, ok := lookupEnv(logging.EnvLogLevel); ok && envLevel != "" && !debug {
		loggingCfg.Level = envLevel
	}
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
	}

	// The workspace redraws the whole terminal; log lines would corrupt it.
	if cmd.Name() == tuiCommandName {
		if dir, err := settingsDir(cmd, lookupEnv); err == nil {
			loggingCfg.Output = logging.OutputFile
			loggingCfg.File = filepath.Join(dir, logFileName)
		}
	}

	result, err := logging.NewLogger(loggingCfg)
	logger = logging.ComponentLogger(result.Logger, "cli")
	if err != nil {
		cmd.PrintErrf("Warning: logging to stderr: %v\n", err)
	}

	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")
	return result
}
