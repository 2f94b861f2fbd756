package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/util"
)

var binCmd = &cobra.Command{
	Use:   "bin",
	Short: "Manage the recycle bin",
}

var binListCmd = &cobra.Command{
	Use:   "list",
	Short: "List soft-deleted documents",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		entries, err := sess.RecycleBin(cmd.Context())
		exitOnErr(err)

		if len(entries) == 0 {
			fmt.Println("The recycle bin is empty.")
			return
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return util.NaturalSortLess(entries[i].FileName, entries[j].FileName)
		})
		for _, e := range entries {
			line := fmt.Sprintf("%s  %s  %s", e.FileID, e.FileName, util.FormatBytes(e.FileSize))
			if e.DeletedAt != nil {
				line += "  deleted " + e.DeletedAt.Local().Format(time.RFC822)
			}
			fmt.Println(line)
		}
	},
}

var binRestoreCmd = &cobra.Command{
	Use:   "restore <fileID>...",
	Short: "Restore documents from the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		result := sess.RestoreMany(cmd.Context(), args)
		for _, id := range result.Succeeded {
			fmt.Printf("%s restored\n", id)
		}
		reportBulkFailures(result.Failed)
	},
}

var binDeleteCmd = &cobra.Command{
	Use:   "delete <fileID>...",
	Short: "Permanently delete documents from the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		result := sess.DeleteMany(cmd.Context(), args, true)
		for _, id := range result.Succeeded {
			fmt.Printf("%s permanently deleted\n", id)
		}
		reportBulkFailures(result.Failed)
	},
}

func init() {
	binCmd.AddCommand(binListCmd, binRestoreCmd, binDeleteCmd)
	rootCmd.AddCommand(binCmd)
}
