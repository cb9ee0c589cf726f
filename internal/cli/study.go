package cli

import (
	"github.com/spf13/cobra"

	"edumentor/internal/app"
	"edumentor/internal/tui"
)

// ExitConfigInvalid is the exit code for configuration failures.
const ExitConfigInvalid = 2

func runStudy(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	return tui.Run(cmd.Context(), a)
}
