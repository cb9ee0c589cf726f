package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edumentor/internal/app"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload study material to the backend",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	added, err := a.Upload(cmd.Context(), args)
	if err != nil {
		return err
	}

	s := newStyles(os.Stdout)
	fmt.Println(s.Success.Render(fmt.Sprintf("Uploaded %d document(s)", len(added))))
	for _, doc := range added {
		detail := string(doc.Kind)
		if doc.PageCount > 1 {
			detail = fmt.Sprintf("%s, %d pages", detail, doc.PageCount)
		}
		fmt.Println(s.kv(doc.ID, doc.Name+" "+s.dim("("+detail+")")))
	}
	return nil
}
