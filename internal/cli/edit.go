package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/backend"
)

// editCmd replaces a document's OCR text, or with --finalized the locked-in
// archive text. The replacement comes from --text, --file, or stdin.
var editCmd = &cobra.Command{
	Use:   "edit <fileID>",
	Short: "Edit a document's extracted text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := editText(cmd)
		if text == "" {
			exitf("No replacement text given: use --text, --file or pipe it on stdin")
		}

		app := newApp()
		defer app.Close()
		sess := newSession(app)

		finalized, _ := cmd.Flags().GetBool("finalized")
		if finalized {
			reason, _ := cmd.Flags().GetString("reason")
			keep, _ := cmd.Flags().GetBool("keep-history")
			freq := backend.EditFinalizedRequest{
				FinalizedText:   text,
				EditReason:      reason,
				PreserveHistory: keep,
			}
			exitOnErr(sess.EditFinalizedText(cmd.Context(), args[0], freq))
			fmt.Printf("%s finalized text updated\n", args[0])
			return
		}

		exitOnErr(sess.EditOCRText(cmd.Context(), args[0], text))
		fmt.Printf("%s OCR text updated\n", args[0])
	},
}

// editText resolves the replacement text: an explicit flag, a file, or
// whatever is piped on stdin.
func editText(cmd *cobra.Command) string {
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		return text
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			exitf("Failed to read %s: %v", path, err)
		}
		return string(raw)
	}
	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
		raw, _ := io.ReadAll(os.Stdin)
		return string(raw)
	}
	return ""
}

func init() {
	editCmd.Flags().String("text", "", "replacement text")
	editCmd.Flags().String("file", "", "file to read the replacement text from")
	editCmd.Flags().Bool("finalized", false, "edit the finalized text instead of the OCR text")
	editCmd.Flags().String("reason", "", "reason for the edit (finalized only)")
	editCmd.Flags().Bool("keep-history", false, "keep the previous version in the edit history")

	rootCmd.AddCommand(editCmd)
}
