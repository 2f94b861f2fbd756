package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/util"
)

// searchCmd runs a full-text search over the finalized archive.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the finalized archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		opts := backend.SearchOptions{Query: args[0]}
		opts.Author, _ = cmd.Flags().GetString("author")
		opts.Publication, _ = cmd.Flags().GetString("publication")
		opts.YearFrom, _ = cmd.Flags().GetInt("from")
		opts.YearTo, _ = cmd.Flags().GetInt("to")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.SortByDate, _ = cmd.Flags().GetBool("newest")
		opts.Fuzzy, _ = cmd.Flags().GetBool("fuzzy")

		results, err := sess.SearchArchive(cmd.Context(), opts)
		exitOnErr(err)

		if len(results) == 0 {
			fmt.Println("No matches.")
			return
		}
		sort.SliceStable(results, func(i, j int) bool {
			return util.NaturalSortLess(results[i].FileName, results[j].FileName)
		})
		for _, res := range results {
			fmt.Printf("%s  %s", res.FileID, res.FileName)
			if res.Title != "" {
				fmt.Printf("  %q", res.Title)
			}
			if res.Author != "" {
				fmt.Printf("  by %s", res.Author)
			}
			if res.Year > 0 {
				fmt.Printf("  (%d)", res.Year)
			}
			fmt.Println()
			if res.Snippet != "" {
				fmt.Printf("    %s\n", res.Snippet)
			}
		}
	},
}

func init() {
	searchCmd.Flags().String("author", "", "filter by author")
	searchCmd.Flags().String("publication", "", "filter by publication")
	searchCmd.Flags().Int("from", 0, "earliest year")
	searchCmd.Flags().Int("to", 0, "latest year")
	searchCmd.Flags().Int("limit", 0, "maximum number of results")
	searchCmd.Flags().Bool("newest", false, "sort by date instead of relevance")
	searchCmd.Flags().Bool("fuzzy", false, "allow fuzzy matching")

	rootCmd.AddCommand(searchCmd)
}
