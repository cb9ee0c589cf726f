package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edumentor/internal/app"
)

var summariesMax int

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "Print bullet summaries of your uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runSummaries,
}

func init() {
	summariesCmd.Flags().IntVar(&summariesMax, "max", 6, "bullets per document")
}

func runSummaries(cmd *cobra.Command, _ []string) error {
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

	a.Summaries(cmd.Context(), summariesMax)

	msg, ok := lastAssistantMessage(a)
	if !ok {
		s := newStyles(os.Stderr)
		fmt.Fprintln(os.Stderr, s.errPrefix(), "no summaries")
		os.Exit(1)
	}
	fmt.Println(msg.Content)
	return nil
}
