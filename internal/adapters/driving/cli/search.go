package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	searchLimit    int
	searchCategory string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored files",
	Long: `Searches file names, descriptions, tags and chunk text.

A field matches when it contains every word of the query, ignoring case.
Results are ranked by the number of matching fields and chunks, newest first
on ties.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "only search this category")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	limit := searchLimit
	if !cmd.Flags().Changed("limit") && svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			limit = settings.Search.DefaultLimit
		}
	}

	query := strings.Join(args, " ")
	opts := domain.SearchOptions{Category: searchCategory, Limit: limit}
	hits, err := svc.Search.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if structured() {
		return printStructured(cmd, hits)
	}
	return outputSearchTable(cmd, hits)
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) error {
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	printHeader(cmd, "Results")
	for i := range hits {
		f := &hits[i].File
		// Format: [N] Name (score) - category
		fmt.Fprintf(out, "  [%d] %s (%d) - %s\n", i+1, f.OriginalName, hits[i].Score, f.Category)
		fmt.Fprintf(out, "      %s\n", render(cmd, mutedStyle, f.ID))
		if len(hits[i].MatchedFields) > 0 {
			fmt.Fprintf(out, "      Matched: %s\n", strings.Join(hits[i].MatchedFields, ", "))
		}
		for _, snippet := range hits[i].Snippets {
			fmt.Fprintf(out, "      %s\n", snippet)
		}
		fmt.Fprintln(out)
	}
	return nil
}
