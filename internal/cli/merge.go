package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMergeCmd creates the 'merge' command.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <primary-id> <secondary-id>",
		Short: "Merge a secondary shard into a primary one",
		Long: `Absorb the secondary shard into the primary: histories interleave in
chronological order, topics union, and usage continuity is preserved.
The secondary shard is archived rather than deleted, so its id keeps
resolving.`,
		Example: `  shardhub merge 01J8XPRIMARY 01J8XSECONDARY`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(args[0], args[1])
		},
	}

	return cmd
}

func runMerge(primaryID, secondaryID string) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	merged, err := eng.Merge(ctx, primaryID, secondaryID)
	if err != nil {
		return err
	}

	fmt.Printf("Merged %s into %s\n", secondaryID, primaryID)
	fmt.Printf("  History:  %d exchanges\n", len(merged.History))
	fmt.Printf("  Tags:     %s / %s\n", merged.Tags.Intent, merged.Tags.Theme)
	fmt.Printf("  Archived: %s\n", secondaryID)
	return nil
}
