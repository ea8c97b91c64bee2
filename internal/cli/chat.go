package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat-go/internal/chat"
	"github.com/raphaelgruber/docchat-go/internal/tui"
)

var chatPromptsFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat interface.

Keys:
  enter          send the message
  shift+enter    new line (ctrl+j also works)
  ctrl+o         attach a PDF; later questions in that chat are answered from it
  tab            switch between the chat list and the input
  ctrl+n         new chat
  ctrl+b         collapse the chat list
  ctrl+c         quit

Chats live in memory only and are gone when you quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatPromptsFile, "prompts", "", "YAML file with welcome prompts (env DOCCHAT_PROMPTS_FILE)")
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatPromptsFile != "" {
		cfg.PromptsFile = chatPromptsFile
	}

	prompts, err := tui.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using default prompts\n", err)
		prompts = tui.DefaultPrompts()
	}

	orch := chat.NewOrchestrator(newBackend(),
		chat.WithRequestTimeout(cfg.RequestTimeout),
		chat.WithLogger(logger),
	)
	logger.Info("chat started", "backend", cfg.BackendURL, "timeout", cfg.RequestTimeout)

	return tui.Run(context.Background(), orch,
		tui.WithPrompts(prompts),
		tui.WithLogger(logger),
	)
}
