package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/jirafocus/internal/config"
	"github.com/rshade/jirafocus/internal/duration"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

const tabPadding = 2

var errInvalidOutput = errors.New("invalid output format")

// NewConfigInitCmd creates the config init command, which writes the default settings.
func NewConfigInitCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings",
		Long: `Writes the default settings to the configured backend.

An existing settings file is left untouched unless --force is given.`,
		Example: `  # Create ~/.jirafocus/settings.yaml
  jirafocus config init

  # Reset the settings to the defaults
  jirafocus config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := openBackend(cmd, lookupEnv)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			if backend.path != "" && backend.kind == BackendFile && !force {
				if _, statErr := os.Stat(backend.path); statErr == nil {
					return fmt.Errorf("settings already exist at %s (use --force to overwrite)", backend.path)
				}
			}

			if err = backend.Save(cmd.Context(), config.Default()); err != nil {
				return fmt.Errorf("writing default settings: %w", err)
			}
			cmd.Printf("Settings initialized at %s\n", describeBackend(backend))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing settings")
	return cmd
}

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Long: `Sets one setting. The whole record is validated before it is saved, so
credentials must be set before switching to the authentication type that needs them.

Keys: host, authentication_type, username, password, bearer_token,
api_base_path, cache_time, dark_mode`,
		Example: `  jirafocus config set host https://jira.example.com
  jirafocus config set cache_time 1h
  jirafocus config set authentication_type basic`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			store, backend, err := openStore(cmd, lookupEnv)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			if err = store.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			cmd.Printf("Set %s\n", args[0])
			return nil
		},
	}
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, backend, err := openStore(cmd, lookupEnv)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			v, err := store.Snapshot().Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		output      string
		showSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every setting",
		Example: `  jirafocus config list
  jirafocus config list --output yaml
  jirafocus config list --show-secrets`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, backend, err := openStore(cmd, lookupEnv)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			values := store.Snapshot().Masked()
			if showSecrets {
				snapshot := store.Snapshot()
				for _, key := range config.Keys() {
					values[key], _ = snapshot.Get(key)
				}
			}
			return renderSettings(cmd.OutOrStdout(), output, values)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, yaml or json")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print password and bearer token")
	return cmd
}

func renderSettings(w io.Writer, output string, values map[string]string) error {
	switch output {
	case outputTable:
		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "Key\tValue")
		fmt.Fprintln(tw, "---\t-----")
		for _, key := range config.Keys() {
			fmt.Fprintf(tw, "%s\t%s\n", key, values[key])
		}
		return tw.Flush()
	case outputYAML:
		node := yaml.Node{Kind: yaml.MappingNode}
		for _, key := range config.Keys() {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Value: values[key]},
			)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd // two-space YAML indentation
		if err := enc.Encode(&node); err != nil {
			return err
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	default:
		return fmt.Errorf("%w: %q", errInvalidOutput, output)
	}
}

// NewConfigValidateCmd creates the config validate command.
func NewConfigValidateCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the stored settings",
		Long: `Validates the stored settings: the host must be a URL, the API base path
must start with "/", the cache time must be a positive duration and the active
authentication type must have its credentials.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, backend, err := openStore(cmd, lookupEnv)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			if err = store.Snapshot().Validate(); err != nil {
				return fmt.Errorf("settings validation failed: %w", err)
			}
			ttl, err := store.TTL()
			if err != nil {
				return err
			}
			cmd.Printf("Settings are valid (cache entries expire after %s)\n", duration.Format(ttl))
			return nil
		},
	}
}

// NewConfigPathCmd creates the config path command.
func NewConfigPathCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the settings are stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := backendKind(cmd, lookupEnv)
			if err != nil {
				return err
			}
			if kind == BackendMemory {
				cmd.Println(BackendMemory)
				return nil
			}
			path, err := settingsPath(cmd, lookupEnv)
			if err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
}

func describeBackend(b *openedBackend) string {
	if b.path == "" {
		return b.kind
	}
	return b.path
}
