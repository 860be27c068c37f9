package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	contextTokens int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the most similar indexed fragments,
ordered by score.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().IntVar(&contextTokens, "context-tokens", 0, "emit a concatenated context block within this token budget")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	results, err := retrieverService.SearchDocuments(ctx, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if contextTokens > 0 {
		cmd.Println(retrieverService.FormatContext(results, contextTokens))
		return nil
	}
	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, result := range results {
		title := result.Title
		if title == "" {
			title = result.Path
		}
		cmd.Printf("[%d] %s (%.3f)\n", i+1, title, result.Score)
		cmd.Printf("    %s\n", result.Path)
		cmd.Printf("    %s\n", snippet(result.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet flattens whitespace and truncates to max bytes.
func snippet(content string, max int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) <= max {
		return flat
	}
	return flat[:max] + "..."
}
