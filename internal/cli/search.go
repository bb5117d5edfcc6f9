package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novamem/shardhub/internal/search"
)

// NewSearchCmd creates the 'search' command for ranked retrieval.
func NewSearchCmd() *cobra.Command {
	var limit int
	var theme string
	var intent string
	var includeArchived bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Ranked search over the shard index",
		Long: `Rank shards against a query using lexical overlap, optional semantic
similarity, and recency/usage decay. Returned shards count as loaded.`,
		Example: `  shardhub search "career planning"
  shardhub search "database choice" --theme engineering --limit 3
  shardhub search "old plans" --archived --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], search.Options{
				Limit:           limit,
				Theme:           theme,
				Intent:          intent,
				IncludeArchived: includeArchived,
			}, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default 5)")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "Filter by theme substring")
	cmd.Flags().StringVarP(&intent, "intent", "i", "", "Filter by intent substring")
	cmd.Flags().BoolVar(&includeArchived, "archived", false, "Include archived shards")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(query string, opts search.Options, jsonOutput bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	results, err := eng.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No matching shards.")
		return nil
	}

	fmt.Printf("Results (%d):\n\n", len(results))
	for i, r := range results {
		fmt.Printf("  %d. %s  (%.3f, %s)\n", i+1, r.ID, r.Score, r.Method)
		fmt.Printf("     %s\n", r.GuidingQuestion)
		if r.Summary != "" {
			fmt.Printf("     %s\n", r.Summary)
		}
		fmt.Println()
	}
	return nil
}

// NewDeepSearchCmd creates the 'deep-search' command for full-text
// retrieval over conversation history.
func NewDeepSearchCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deep-search <query>",
		Short: "Full-text search over conversation history",
		Long: `Search the raw history text of every shard. Read-only: deep hits do
not count as load events and leave usage counters untouched.`,
		Example: `  shardhub deep-search "postgres connection pool"
  shardhub deep-search "lisbon" --limit 10 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeepSearch(args[0], limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum hits")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runDeepSearch(query string, limit int, jsonOutput bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	hits, err := eng.DeepSearch(query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No matching shards.")
		return nil
	}

	fmt.Printf("Hits (%d):\n\n", len(hits))
	for i, h := range hits {
		fmt.Printf("  %d. %s  (%.3f)\n", i+1, h.ID, h.Score)
		if h.GuidingQuestion != "" {
			fmt.Printf("     %s\n", h.GuidingQuestion)
		}
		fmt.Println()
	}
	return nil
}
