package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/jirafocus/internal/app"
	"github.com/rshade/jirafocus/internal/storage"
	"github.com/rshade/jirafocus/internal/tui"
)

const tuiCommandName = "tui"

// noticeBuffer bounds how many notices can queue before the workspace reads them.
const noticeBuffer = 16

var errNotTerminal = errors.New("the workspace needs an interactive terminal")

// NewTUICmd creates the tui command, which runs the interactive workspace.
func NewTUICmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   tuiCommandName,
		Short: "Open the interactive workspace",
		Long: `Opens the interactive workspace. Logs go to jirafocus.log next to the
settings file. With the file backend, edits to the settings file are picked up
while the workspace is open.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return errNotTerminal
			}

			notices := make(chan string, noticeBuffer)
			a, backend, err := loadApp(cmd, lookupEnv, app.WithNotifier(tui.Notifier(notices)))
			if err != nil {
				return err
			}
			defer func() {
				a.Unload()
				_ = backend.Close()
			}()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			p := tea.NewProgram(tui.New(ctx, a, tui.WithNotices(notices)), tea.WithAltScreen(), tea.WithContext(ctx))

			if backend.file != nil {
				store := a.Store
				watchErr := backend.file.Watch(ctx, storage.DefaultWatchDebounce, logger, func() {
					changed, reloadErr := store.Reload(ctx)
					if reloadErr != nil {
						logger.Warn().Err(reloadErr).Msg("reloading settings")
						return
					}
					if changed {
						p.Send(tui.SettingsChangedMsg{})
					}
				})
				if watchErr != nil {
					logger.Warn().Err(watchErr).Msg("settings file will not be watched")
				}
			}

			if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("running workspace: %w", err)
			}
			return nil
		},
	}
}
