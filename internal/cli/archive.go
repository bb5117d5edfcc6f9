package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewArchiveCmd creates the 'archive' command.
func NewArchiveCmd() *cobra.Command {
	var restore bool

	cmd := &cobra.Command{
		Use:   "archive <shard-id>",
		Short: "Archive a shard (or restore it with --restore)",
		Long: `Archiving removes a shard from the default search scope without
deleting it. The shard stays fetchable by id and can be restored.`,
		Example: `  shardhub archive 01J8X...
  shardhub archive 01J8X... --restore`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(args[0], restore)
		},
	}

	cmd.Flags().BoolVarP(&restore, "restore", "r", false, "Restore an archived shard")

	return cmd
}

func runArchive(id string, restore bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if restore {
		if err := eng.Unarchive(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Restored shard %s\n", id)
		return nil
	}

	if err := eng.Archive(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Archived shard %s\n", id)
	return nil
}

// NewRemoveCmd creates the 'rm' command for permanent deletion.
func NewRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <shard-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a shard permanently",
		Long: `Delete a shard from the repository and both indexes. Unlike archive
this is irreversible; the id is never reused. Prefer archive unless the
content must actually go away.`,
		Example: `  shardhub rm 01J8X... --force`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}

func runRemove(id string, force bool) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if !force {
		s, err := eng.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("About to delete shard %s (%q, %d exchanges).\n", s.ID, s.GuidingQuestion, len(s.History))
		fmt.Print("Type 'yes' to confirm: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := eng.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted shard %s\n", id)
	return nil
}
