package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var uploadQuiet bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF for retrieval",
	Long: `Upload a PDF to the backend and print its collection name.

Pass the collection name to "docchat ask --collection" to ask questions about it.

Examples:
  docchat upload judgment.pdf
  docchat ask "Summarize the ruling" -c "$(docchat upload -q judgment.pdf)"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadQuiet, "quiet", "q", false, "print only the collection name")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	collection, err := newBackend().UploadFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if uploadQuiet {
		fmt.Fprintln(out, collection)
		return nil
	}
	fmt.Fprintf(out, "PDF %q processed successfully.\n", path)
	fmt.Fprintf(out, "Collection: %s\n", collection)
	return nil
}
