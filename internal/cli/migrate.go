package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/jirafocus/internal/logging"
	"github.com/rshade/jirafocus/internal/migration"
)

// NewConfigMigrateCmd creates the config migrate command, which copies the
// settings into another backend.
func NewConfigMigrateCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		to        string
		toPath    string
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the settings into another backend",
		Long: `Copies the settings from the current backend into another one. The source
is left untouched. Point later commands at the new location with --backend and --config.`,
		Example: `  # Move from settings.yaml to settings.db in the same directory
  jirafocus config migrate --to sqlite

  # Export a SQLite store to a YAML file without prompting
  jirafocus config migrate --backend sqlite --to file --to-path ./settings.yaml --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			to = strings.ToLower(to)
			if to != BackendFile && to != BackendSQLite {
				return fmt.Errorf("%w: %q (want %s or %s)", errUnknownBackend, to, BackendFile, BackendSQLite)
			}

			src, err := openBackend(cmd, lookupEnv)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()

			if toPath == "" {
				if toPath, err = defaultPathFor(cmd, lookupEnv, to); err != nil {
					return err
				}
			}
			dst, err := openBackendAt(cmd.Context(), to, toPath)
			if err != nil {
				return err
			}
			defer func() { _ = dst.Close() }()

			_, err = migration.Run(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(),
				migration.Endpoint{Name: describeBackend(src), Backend: src},
				migration.Endpoint{Name: describeBackend(dst), Backend: dst},
				migration.Options{
					AssumeYes: assumeYes,
					Logger:    logging.ComponentLogger(logger, "migration"),
				},
			)
			return err
		},
	}

	cmd.Flags().StringVar(&to, "to", BackendSQLite, "destination backend: file or sqlite")
	cmd.Flags().StringVar(&toPath, "to-path", "", "destination location (default next to the current settings)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
