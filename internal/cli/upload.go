package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/config"
	"github.com/scandesk/scandesk/internal/identity"
	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
)

// uploadCmd attaches and uploads one or more scan files. A bad file never
// aborts the batch; the command exits non-zero if anything failed.
var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload scan files to the digitization backend",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)
		st := store.New(app.DB())

		failures := 0
		var uploaded []string
		for _, res := range sess.Attach(args, metadataFromFlags(cmd)) {
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
				failures++
				continue
			}
			if err := sess.Upload(cmd.Context(), res.Entry.ID); err != nil {
				if errors.Is(err, identity.ErrSignedOut) {
					exitOnErr(err)
				}
				fmt.Fprintf(os.Stderr, "%s: upload failed: %v\n", res.Entry.DisplayName, err)
				failures++
				continue
			}
			entry, err := st.GetQueueEntry(res.Entry.ID)
			if err != nil {
				exitf("Failed to read the journal: %v", err)
			}
			fmt.Printf("%s uploaded as %s (%s)\n", entry.DisplayName, entry.FileID, entry.Routing)
			uploaded = append(uploaded, entry.FileID)
		}

		if wait, _ := cmd.Flags().GetBool("wait"); wait && len(uploaded) > 0 {
			waitForProcessing(cmd.Context(), sess, app.Config(), uploaded)
		}
		if failures > 0 {
			os.Exit(1)
		}
	},
}

// metadataFromFlags collects the metadata flags into a block, or nil when
// none were given.
func metadataFromFlags(cmd *cobra.Command) *models.DocumentMetadata {
	md := &models.DocumentMetadata{}
	md.Title, _ = cmd.Flags().GetString("title")
	md.Author, _ = cmd.Flags().GetString("author")
	md.Date, _ = cmd.Flags().GetString("date")
	md.Collection, _ = cmd.Flags().GetString("collection")
	md.Notes, _ = cmd.Flags().GetString("notes")
	md.Tags, _ = cmd.Flags().GetStringSlice("tags")

	if md.Title == "" && md.Author == "" && md.Date == "" &&
		md.Collection == "" && md.Notes == "" && len(md.Tags) == 0 {
		return nil
	}
	return md
}

// waitForProcessing polls each file's detailed status at the burst
// interval until every file settles or the burst budget runs out.
func waitForProcessing(ctx context.Context, sess *session.Session, cfg *config.Config, fileIDs []string) {
	interval := time.Duration(cfg.Poll.BurstInterval) * time.Second
	if interval <= 0 {
		interval = 3 * time.Second
	}
	limit := cfg.Poll.BurstLimit
	if limit <= 0 {
		limit = 40
	}

	fmt.Printf("Waiting for %d file(s) to finish processing...\n", len(fileIDs))
	pending := fileIDs
	for run := 0; run < limit && len(pending) > 0; run++ {
		if run > 0 {
			time.Sleep(interval)
		}
		var still []string
		for _, id := range pending {
			terminal, err := sess.RefreshDetail(ctx, id)
			if err != nil || !terminal {
				still = append(still, id)
				continue
			}
			fmt.Printf("%s finished processing\n", id)
		}
		pending = still
	}
	for _, id := range pending {
		fmt.Printf("%s is still processing; check later with: scandesk status\n", id)
	}
}

func init() {
	uploadCmd.Flags().String("title", "", "document title")
	uploadCmd.Flags().String("author", "", "document author")
	uploadCmd.Flags().String("date", "", "document date, free form")
	uploadCmd.Flags().String("collection", "", "collection the document belongs to")
	uploadCmd.Flags().String("notes", "", "free-form notes")
	uploadCmd.Flags().StringSlice("tags", nil, "comma-separated tags")
	uploadCmd.Flags().Bool("wait", false, "poll until processing finishes")

	rootCmd.AddCommand(uploadCmd)
}
