package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/jirafocus/internal/app"
)

// NewCommandsCmd creates the commands command, which lists the workspace commands.
func NewCommandsCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the workspace commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, backend, err := loadApp(cmd, lookupEnv, app.WithoutPriming())
			if err != nil {
				return err
			}
			defer func() {
				a.Unload()
				_ = backend.Close()
			}()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(tw, "ID\tName")
			for _, c := range a.Commands() {
				fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	}
}

// NewRunCmd creates the run command, which runs one workspace command by ID.
func NewRunCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "run <command-id>",
		Short: "Run a workspace command",
		Long: `Runs a workspace command outside the interactive workspace.
clear-cache clears the caches and waits for the dependent caches to be primed again.`,
		Example: `  jirafocus run clear-cache`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notify := func(msg string) { cmd.Println(msg) }
			a, backend, err := loadApp(cmd, lookupEnv, app.WithoutPriming(), app.WithNotifier(notify))
			if err != nil {
				return err
			}
			defer func() {
				a.Unload()
				_ = backend.Close()
			}()

			if err = a.RunCommand(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.Coordinator.Wait()

			if _, v, ok := a.Workspace.Focused(); ok {
				cmd.Println(v.Render(defaultRenderWidth))
			}
			return nil
		},
	}
}

const defaultRenderWidth = 60
