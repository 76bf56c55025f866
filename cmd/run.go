package cmd

import (
	"github.com/spf13/cobra"

	"github.com/toeicpractice/toeic/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	e.log.Info("starting tui")
	return app.Run(app.Options{
		API:      e.api,
		Sessions: e.sessions,
		Settings: e.store.SettingsRepo(),
		Requests: e.store.RequestRepo(),
		Log:      e.log,
		PageSize: e.cfg.PageSize,
	})
}
