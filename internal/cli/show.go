package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/models"
)

// showCmd fetches one document from the backend and prints everything the
// service knows about it.
var showCmd = &cobra.Command{
	Use:   "show <fileID>",
	Short: "Show a document's details and extracted text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()
		sess := newSession(app)

		finalized, _ := cmd.Flags().GetBool("finalized")
		doc, err := sess.Document(cmd.Context(), args[0], finalized)
		exitOnErr(err)
		printDocument(doc, finalized)
	},
}

func printDocument(doc *models.Document, withFinalized bool) {
	fmt.Printf("%s  %s\n", doc.FileID, doc.FileName)
	fmt.Printf("Status: %s", doc.Status)
	if doc.ProcessingType != "" {
		fmt.Printf("  (%s)", doc.ProcessingType)
	}
	if doc.Finalized {
		fmt.Print("  [finalized]")
	}
	fmt.Println()
	if doc.UploadedAt != nil {
		fmt.Printf("Uploaded: %s\n", doc.UploadedAt.Local().Format(time.RFC822))
	}
	if doc.ProcessedAt != nil {
		fmt.Printf("Processed: %s\n", doc.ProcessedAt.Local().Format(time.RFC822))
	}

	if md := doc.Metadata; md != nil {
		if md.Title != "" {
			fmt.Printf("Title: %s\n", md.Title)
		}
		if md.Author != "" {
			fmt.Printf("Author: %s\n", md.Author)
		}
		if md.Date != "" {
			fmt.Printf("Date: %s\n", md.Date)
		}
		if md.Collection != "" {
			fmt.Printf("Collection: %s\n", md.Collection)
		}
		if len(md.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(md.Tags, ", "))
		}
		if md.Notes != "" {
			fmt.Printf("Notes: %s\n", md.Notes)
		}
	}
	if ta := doc.TextAnalysis; ta != nil {
		fmt.Printf("Quality: %.0f%%", ta.QualityScore*100)
		if ta.WordCount > 0 {
			fmt.Printf(", %d words", ta.WordCount)
		}
		fmt.Println()
	}

	if ocr := doc.OCR; ocr != nil {
		layer, text := bestTextLayer(ocr)
		if text != "" {
			fmt.Printf("\n--- OCR text (%s) ---\n%s\n", layer, text)
		}
	}
	if withFinalized && doc.FinalizedResult != nil {
		fr := doc.FinalizedResult
		fmt.Printf("\n--- Finalized text (source: %s) ---\n%s\n", fr.TextSource, fr.Text)
		if fr.Notes != "" {
			fmt.Printf("Notes: %s\n", fr.Notes)
		}
		for _, edit := range fr.EditHistory {
			line := "Edited"
			if edit.EditedAt != nil {
				line += " " + edit.EditedAt.Local().Format(time.RFC822)
			}
			if edit.Reason != "" {
				line += ": " + edit.Reason
			}
			fmt.Println(line)
		}
	}
}

// bestTextLayer picks the most refined OCR layer available.
func bestTextLayer(ocr *models.OCRResult) (string, string) {
	switch {
	case ocr.EditedText != "":
		return "edited", ocr.EditedText
	case ocr.FormattedText != "":
		return "formatted", ocr.FormattedText
	default:
		return "raw", ocr.RawText
	}
}

func init() {
	showCmd.Flags().Bool("finalized", false, "include the finalized text and edit history")

	rootCmd.AddCommand(showCmd)
}
