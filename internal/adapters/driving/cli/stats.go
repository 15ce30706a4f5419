package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the knowledge base",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	stats, err := svc.Files.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if structured() {
		return printStructured(cmd, stats)
	}

	out := cmd.OutOrStdout()
	printHeader(cmd, "Knowledge base")
	fmt.Fprintf(out, "  Files:  %d\n", stats.TotalFiles)
	fmt.Fprintf(out, "  Size:   %s\n", humanSize(stats.TotalSize))
	fmt.Fprintf(out, "  Chunks: %d\n", stats.TotalChunks)

	fmt.Fprintln(out, "\n  By type:")
	printCounts(out, stats.CountsByType)
	fmt.Fprintln(out, "\n  By category:")
	printCounts(out, stats.CountsByCategory)
	return nil
}

func printCounts(out io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "    %-20s %d\n", k, counts[k])
	}
}
