package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus-level counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runStats(jsonOutput bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	stats := eng.Stats()

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	fmt.Printf("Shards:    %d\n", stats.Total)
	fmt.Printf("Archived:  %d\n", stats.Archived)
	fmt.Printf("Enriched:  %d\n", stats.Enriched)
	if stats.Dimension > 0 {
		fmt.Printf("Embedding: %d dimensions\n", stats.Dimension)
	} else {
		fmt.Printf("Embedding: none (lexical search only)\n")
	}
	return nil
}
