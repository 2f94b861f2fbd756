package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/backend"
)

// finalizeCmd locks in a text layer for a processed document. Finalized
// documents enter the searchable archive.
var finalizeCmd = &cobra.Command{
	Use:   "finalize <fileID>",
	Short: "Finalize a processed document's text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source, _ := cmd.Flags().GetString("source")
		switch source {
		case "ocr", "formatted", "edited":
		default:
			exitf("Invalid --source %q: must be ocr, formatted or edited", source)
		}
		notes, _ := cmd.Flags().GetString("notes")

		app := newApp()
		defer app.Close()
		sess := newSession(app)

		freq := backend.FinalizeRequest{TextSource: source, Notes: notes}
		exitOnErr(sess.Finalize(cmd.Context(), args[0], freq))
		fmt.Printf("%s finalized using the %s text\n", args[0], source)
	},
}

func init() {
	finalizeCmd.Flags().String("source", "", "text layer to finalize: ocr, formatted or edited")
	finalizeCmd.Flags().String("notes", "", "finalization notes")
	finalizeCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(finalizeCmd)
}
