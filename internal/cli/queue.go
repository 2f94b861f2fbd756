package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/store"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the local upload journal",
}

var queueRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Upload every pending and failed journal entry",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)
		st := store.New(app.DB())

		result, err := sess.UploadPending(cmd.Context())
		exitOnErr(err)
		if len(result.Succeeded) == 0 && len(result.Failed) == 0 {
			fmt.Println("Nothing to upload.")
			return
		}
		for _, entryID := range result.Succeeded {
			if entry, err := st.GetQueueEntry(entryID); err == nil {
				fmt.Printf("%s uploaded as %s\n", entry.DisplayName, entry.FileID)
			}
		}
		reportBulkFailures(result.Failed)
	},
}

var queueClearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Remove journal entries the backend has confirmed",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		cleared, err := sess.ClearCompleted()
		if err != nil {
			exitf("Failed to clear completed entries: %v", err)
		}
		fmt.Printf("Removed %d completed entr%s.\n", cleared, plural(cleared, "y", "ies"))
	},
}

var queueClearPendingCmd = &cobra.Command{
	Use:   "clear-pending",
	Short: "Remove journal entries that have not been uploaded",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		cleared, err := sess.ClearPending()
		if err != nil {
			exitf("Failed to clear pending entries: %v", err)
		}
		fmt.Printf("Removed %d pending entr%s.\n", cleared, plural(cleared, "y", "ies"))
	},
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <entryID>",
	Short: "Remove a single journal entry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		if err := sess.RemoveEntry(args[0]); err != nil {
			exitf("Failed to remove entry: %v", err)
		}
		fmt.Println("Entry removed.")
	},
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	queueCmd.AddCommand(queueRetryCmd, queueClearCompletedCmd, queueClearPendingCmd, queueRemoveCmd)
	rootCmd.AddCommand(queueCmd)
}
