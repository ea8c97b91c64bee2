package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat-go/internal/metrics"
	"github.com/raphaelgruber/docchat-go/internal/relay"
)

var statsRelayURL string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show relay statistics",
	Long: `Show runtime statistics of a running docchat-relay.

Examples:
  docchat stats
  docchat stats --relay http://localhost:3000`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsRelayURL, "relay", "", "relay URL (env DOCCHAT_RELAY_URL)")
}

func runStats(cmd *cobra.Command, args []string) error {
	url := cfg.RelayURL
	if statsRelayURL != "" {
		url = statsRelayURL
	}

	stats, err := relay.NewClient(url).Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get relay stats: %w", err)
	}
	printStats(cmd.OutOrStdout(), stats)
	return nil
}

// printStats displays relay runtime statistics.
func printStats(w io.Writer, stats metrics.Snapshot) {
	fmt.Fprintf(w, "Relay Statistics (in-memory, since restart)\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", stats.UptimeSeconds)

	sections := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"Relayed requests", stats.Relay},
		{"Direct questions", stats.AskDirect},
		{"Document questions", stats.AskRAG},
		{"Uploads", stats.Upload},
	}
	for _, s := range sections {
		if s.op == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", s.name)
		printOpStats(w, s.op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
