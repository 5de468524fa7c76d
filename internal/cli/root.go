package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/jirafocus/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop() //nolint:gochecknoglobals // Set once per command in PersistentPreRunE.

// NewRootCmd creates the root Cobra command for the jirafocus CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:           "jirafocus",
		Short:         "Cached Jira issue lookups and a terminal workspace",
		Long:          "jirafocus: fetch Jira issues through a TTL cache that is invalidated when the settings change",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			result := setupLogging(cmd, lookupEnv)
			logResult = result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "settings location (default ~/.jirafocus/settings.yaml, env "+EnvConfig+")")
	cmd.PersistentFlags().String("backend", "", "settings backend: file, sqlite or memory (env "+EnvBackend+")")

	cmd.AddCommand(
		newConfigCmd(lookupEnv),
		NewIssueCmd(lookupEnv),
		NewSearchCmd(lookupEnv),
		NewCommandsCmd(lookupEnv),
		NewRunCmd(lookupEnv),
		NewPingCmd(lookupEnv),
		NewTUICmd(lookupEnv),
	)

	return cmd
}

const rootCmdExample = `  # Point jirafocus at a Jira server
  jirafocus config set host https://jira.example.com

  # Use a personal access token
  jirafocus config set bearer_token <token>
  jirafocus config set authentication_type bearer_token

  # Fetch issues (concurrently, through the cache)
  jirafocus issue PROJ-1 PROJ-2 --output json

  # Run a JQL search
  jirafocus search "project = PROJ AND status = Done" --limit 20

  # Check the server version
  jirafocus ping

  # Open the interactive workspace
  jirafocus tui`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Settings management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(lookupEnv), NewConfigSetCmd(lookupEnv), NewConfigGetCmd(lookupEnv),
		NewConfigListCmd(lookupEnv), NewConfigValidateCmd(lookupEnv), NewConfigPathCmd(lookupEnv),
		NewConfigMigrateCmd(lookupEnv),
	)
	return cmd
}
