package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/util"
)

// statusCmd prints the reconciled queue: local journal entries merged with
// the backend's processed list.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the upload queue and processing status",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		watch, _ := cmd.Flags().GetBool("watch")
		interval := time.Duration(app.Config().Poll.ListInterval) * time.Second
		for {
			if err := sess.RefreshList(cmd.Context()); err != nil {
				exitOnErr(err)
			}
			sess.RefreshDetails(cmd.Context())

			snapshot, err := sess.Snapshot()
			if err != nil {
				exitf("Failed to read the queue: %v", err)
			}
			printSnapshot(snapshot)
			if !watch {
				return
			}
			time.Sleep(interval)
			fmt.Println()
		}
	},
}

func printSnapshot(snapshot *models.QueueSnapshot) {
	c := snapshot.Counts
	fmt.Printf("%d document(s): %d attached, %d queued, %d completed, %d failed, %d deleting\n",
		c.Total(), c.Attached, c.Queued, c.Completed, c.Failed, c.Deleting)
	if len(snapshot.Documents) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tSTATUS\tFILE ID")
	for _, doc := range snapshot.Documents {
		status := doc.Label
		if doc.Error != "" {
			status += " (" + doc.Error + ")"
		}
		fileID := doc.FileID
		if fileID == "" {
			fileID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", doc.Name, util.FormatBytes(doc.SizeBytes), status, fileID)
	}
	w.Flush()
}

func init() {
	statusCmd.Flags().Bool("watch", false, "keep refreshing at the list poll interval")

	rootCmd.AddCommand(statusCmd)
}
