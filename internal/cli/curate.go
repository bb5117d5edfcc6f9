package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/novamem/shardhub/internal/curate"
)

// NewCurateCmd creates the 'curate' command for maintenance reports.
func NewCurateCmd() *cobra.Command {
	var themeThreshold int
	var topicOverlap float64
	var staleDays int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Report duplicates, merge candidates, and archival candidates",
		Long: `Run the curation heuristics over the corpus and report what a human
(or agent) might want to clean up. Advisory only; nothing is modified.`,
		Example: `  shardhub curate
  shardhub curate --stale-days 30 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(themeThreshold, topicOverlap, time.Duration(staleDays)*24*time.Hour, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&themeThreshold, "theme-threshold", curate.DefaultThemeThreshold, "Minimum shards per theme before suggesting merges")
	cmd.Flags().Float64Var(&topicOverlap, "topic-overlap", curate.DefaultTopicOverlap, "Mean pairwise topic overlap required for a merge group")
	cmd.Flags().IntVar(&staleDays, "stale-days", int(curate.DefaultStalenessWindow.Hours()/24), "Days without use before a shard counts as stale")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runCurate(themeThreshold int, topicOverlap float64, staleness time.Duration, jsonOutput bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	duplicates := eng.FindDuplicates()
	mergeGroups := eng.SuggestMerges(themeThreshold, topicOverlap)
	archival := eng.SuggestArchival(staleness)

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"duplicates":          duplicates,
			"merge_candidates":    mergeGroups,
			"archival_candidates": archival,
		})
	}

	if len(duplicates) == 0 && len(mergeGroups) == 0 && len(archival) == 0 {
		fmt.Println("Nothing to curate.")
		return nil
	}

	if len(duplicates) > 0 {
		fmt.Printf("Duplicate content (%d pairs):\n", len(duplicates))
		for _, p := range duplicates {
			fmt.Printf("  %s == %s\n", p.A, p.B)
		}
		fmt.Println()
	}
	if len(mergeGroups) > 0 {
		fmt.Printf("Merge candidates (%d groups):\n", len(mergeGroups))
		for _, group := range mergeGroups {
			fmt.Printf("  %s\n", strings.Join(group, ", "))
		}
		fmt.Println()
	}
	if len(archival) > 0 {
		fmt.Printf("Archival candidates (%d):\n", len(archival))
		for _, id := range archival {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}

// NewEnrichCmd creates the 'enrich' command.
func NewEnrichCmd() *cobra.Command {
	var force bool
	var all bool

	cmd := &cobra.Command{
		Use:   "enrich [shard-id]",
		Short: "Generate summary, topics, and embedding for shards",
		Long: `Run the summarizer and embedder collaborators over one shard, or the
whole corpus with --all. Already-enriched shards are skipped unless
--force is set.`,
		Example: `  shardhub enrich 01J8X...
  shardhub enrich --all
  shardhub enrich --all --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return runEnrich(id, all, force)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Enrich every shard")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-enrich already-enriched shards")

	return cmd
}

func runEnrich(id string, all, force bool) error {
	if id == "" && !all {
		return fmt.Errorf("provide a shard id or --all")
	}

	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if all {
		report, err := eng.EnrichAll(ctx, force)
		if err != nil {
			return err
		}
		fmt.Printf("Enriched %d, skipped %d, failed %d\n", report.Enriched, report.Skipped, report.Failed)
		return nil
	}

	enriched, err := eng.Enrich(ctx, id, force)
	if err != nil {
		return err
	}
	if enriched {
		fmt.Printf("Enriched shard %s\n", id)
	} else {
		fmt.Printf("Shard %s already enriched (use --force to redo)\n", id)
	}
	return nil
}

// NewValidateCmd creates the 'validate' command for citation checks.
func NewValidateCmd() *cobra.Command {
	var loaded []string

	cmd := &cobra.Command{
		Use:   "validate <cited-id>...",
		Short: "Check cited shard ids against a loaded set",
		Long: `Report every cited id that is missing from the loaded set. A non-empty
report means the citing response referenced memory it never loaded.`,
		Example: `  shardhub validate s1 s2 s9 --loaded s1 --loaded s2`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, loaded)
		},
	}

	cmd.Flags().StringArrayVarP(&loaded, "loaded", "l", nil, "Id in the loaded set (repeatable)")

	return cmd
}

func runValidate(cited, loaded []string) error {
	invalid := curate.ValidateCitations(cited, loaded)
	if len(invalid) == 0 {
		fmt.Println("All citations valid.")
		return nil
	}

	fmt.Printf("Invalid citations (%d):\n", len(invalid))
	for _, id := range invalid {
		fmt.Printf("  %s\n", id)
	}
	return fmt.Errorf("%d cited shard(s) were never loaded", len(invalid))
}
