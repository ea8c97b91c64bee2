package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat-go/internal/backend"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

var (
	askCollection string
	askFile       string
	askNoSources  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Ask a single question and print the answer.

Without --collection or --file the question goes straight to the language model.
With --collection the answer is drawn from a previously uploaded PDF;
--file uploads a PDF first and asks about it.

Examples:
  docchat ask "Explain the structure of the Indian judiciary."
  docchat ask "What does Article 21 say?" --collection pdf_constitution_1a2b
  docchat ask "Who are the parties?" --file contract.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCollection, "collection", "c", "", "answer from an uploaded document's collection")
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "upload this PDF first and answer from it")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "omit source citations")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()
	client := newBackend()
	out := cmd.OutOrStdout()

	collection := askCollection
	if askFile != "" {
		var err error
		collection, err = client.UploadFile(ctx, askFile)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		fmt.Fprintf(out, "Uploaded %s (collection %s)\n\n", askFile, collection)
	}

	mode := models.ModeDirect
	if collection != "" {
		mode = models.ModeRAG
	}

	answer, err := client.Ask(ctx, question, mode, collection)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	printAnswer(out, answer, !askNoSources)
	return nil
}

// printAnswer writes the answer text followed by its citations.
func printAnswer(w io.Writer, a backend.Answer, withSources bool) {
	fmt.Fprintln(w, a.Text)
	if !withSources || len(a.Sources) == 0 {
		return
	}

	fmt.Fprintf(w, "\nSources:\n")
	for _, s := range a.Sources {
		page := string(s.Page)
		if page == "" {
			page = "?"
		}
		fmt.Fprintf(w, "  [p. %s] %s\n", page, excerpt(s.Content, 200))
	}
}

// excerpt collapses whitespace and shortens s to maxLen runes, adding "..." if truncated.
func excerpt(s string, maxLen int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= maxLen {
		return string(r)
	}
	return string(r[:maxLen-3]) + "..."
}
