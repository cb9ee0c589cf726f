package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"edumentor/internal/app"
	"edumentor/internal/model"
)

var modeCmd = &cobra.Command{
	Use:   "mode <name>",
	Short: "Process every uploaded document under a learning mode",
	Long: "Available modes: " + modeNames() + ".\n" +
		"The backend analyzes every uploaded document in the chosen style.",
	Args: cobra.ExactArgs(1),
	RunE: runMode,
}

func modeNames() string {
	names := make([]string, len(model.Modes))
	for i, m := range model.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func runMode(cmd *cobra.Command, args []string) error {
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

	mode := model.Mode(strings.ToLower(args[0]))
	if err := a.SelectMode(cmd.Context(), mode); err != nil {
		return err
	}

	msg, ok := lastAssistantMessage(a)
	if !ok {
		s := newStyles(os.Stderr)
		fmt.Fprintln(os.Stderr, s.errPrefix(), "no result")
		os.Exit(1)
	}
	fmt.Println(msg.Content)
	return nil
}
