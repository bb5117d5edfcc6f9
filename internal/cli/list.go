package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novamem/shardhub/internal/engine"
)

// NewListCmd creates the 'list' command for showing the shard index.
func NewListCmd() *cobra.Command {
	var theme string
	var intent string
	var includeArchived bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the shard index with status tags",
		Example: `  shardhub list
  shardhub ls --theme career
  shardhub list --archived --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(engine.Filter{
				Theme:           theme,
				Intent:          intent,
				IncludeArchived: includeArchived,
			}, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&theme, "theme", "t", "", "Filter by theme substring")
	cmd.Flags().StringVarP(&intent, "intent", "i", "", "Filter by intent substring")
	cmd.Flags().BoolVar(&includeArchived, "archived", false, "Include archived shards")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runList(filter engine.Filter, jsonOutput bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	entries := eng.ListIndex(filter)

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No shards.")
		fmt.Println("Run 'shardhub create <question>' to start one.")
		return nil
	}

	fmt.Printf("Shards (%d):\n\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %s\n", e.ID)
		fmt.Printf("    Question: %s\n", e.GuidingQuestion)
		fmt.Printf("    Tags:     %s / %s\n", e.Intent, e.Theme)
		fmt.Printf("    Usage:    %d exchanges, loaded %d times\n", e.HistoryLen, e.UsageCount)
		if len(e.StatusTags) > 0 {
			fmt.Printf("    Status:   %s\n", strings.Join(e.StatusTags, ", "))
		}
		fmt.Println()
	}
	return nil
}

// NewGetCmd creates the 'get' command for inspecting one shard.
func NewGetCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <shard-id>",
		Short: "Show a shard in full, history included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runGet(id string, jsonOutput bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	s, err := eng.Get(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Printf("Shard %s\n", s.ID)
	fmt.Printf("  Question: %s\n", s.GuidingQuestion)
	fmt.Printf("  Tags:     %s / %s\n", s.Tags.Intent, s.Tags.Theme)
	if s.Summary != "" {
		fmt.Printf("  Summary:  %s\n", s.Summary)
	}
	if len(s.Topics) > 0 {
		fmt.Printf("  Topics:   %s\n", strings.Join(s.Topics, ", "))
	}
	fmt.Printf("  Usage:    loaded %d times\n", s.UsageCount)
	if s.Archived {
		fmt.Printf("  Archived: yes\n")
	}
	fmt.Printf("  History (%d exchanges):\n", len(s.History))
	for _, ex := range s.History {
		if ex.UserText != "" {
			fmt.Printf("    [%s] User:  %s\n", ex.Timestamp.Format("2006-01-02 15:04"), ex.UserText)
		}
		if ex.AgentText != "" {
			fmt.Printf("    [%s] Agent: %s\n", ex.Timestamp.Format("2006-01-02 15:04"), ex.AgentText)
		}
	}
	return nil
}
