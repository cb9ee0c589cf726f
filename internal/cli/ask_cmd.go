package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edumentor/internal/app"
	"edumentor/internal/model"
)

var askDocID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about your uploaded documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askDocID, "doc", "", "focus the question on one document id")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	if askDocID != "" {
		if err := a.Store.SetActiveDocument(&model.Document{ID: askDocID}); err != nil {
			return err
		}
	}

	a.AskQuestion(cmd.Context(), args[0])

	s := newStyles(os.Stdout)
	msg, ok := lastAssistantMessage(a)
	if !ok {
		fmt.Fprintln(os.Stderr, s.errPrefix(), "no answer")
		os.Exit(1)
	}
	fmt.Println(msg.Content)
	if msg.SourceRef != nil {
		fmt.Println(s.dim(fmt.Sprintf("Source: %s, page %d", msg.SourceRef.DocumentName, msg.SourceRef.PageNumber)))
	}
	return nil
}

func lastAssistantMessage(a *app.App) (model.Message, bool) {
	msgs := a.Store.Snapshot().Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}
