package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/jirafocus/internal/app"
	"github.com/rshade/jirafocus/internal/jira"
)

// NewPingCmd creates the ping command, which checks the server version.
func NewPingCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the Jira server and its version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, backend, err := loadApp(cmd, lookupEnv, app.WithoutPriming())
			if err != nil {
				return err
			}
			defer func() {
				a.Unload()
				_ = backend.Close()
			}()

			info, err := a.Client.ServerInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("contacting %s: %w", a.Store.Snapshot().Host, err)
			}
			cmd.Printf("%s %s (%s)\n", orDash(info.ServerTitle), info.Version, orDash(info.DeploymentType))
			if err = jira.CheckCompatibility(info); err != nil {
				return err
			}
			cmd.Println("Server is supported")
			return nil
		},
	}
}
