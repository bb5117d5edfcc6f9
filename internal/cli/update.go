package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewUpdateCmd creates the 'update' command for appending an exchange.
func NewUpdateCmd() *cobra.Command {
	var userText string
	var agentText string

	cmd := &cobra.Command{
		Use:   "update <shard-id>",
		Short: "Append an exchange to a shard's history",
		Example: `  shardhub update 01J8X... --user "Leaning toward Postgres" --agent "Good fit for the access pattern"
  shardhub update 01J8X... --user "Follow-up thought"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args[0], userText, agentText)
		},
	}

	cmd.Flags().StringVarP(&userText, "user", "u", "", "User side of the exchange")
	cmd.Flags().StringVarP(&agentText, "agent", "a", "", "Agent side of the exchange")

	return cmd
}

func runUpdate(id, userText, agentText string) error {
	if userText == "" && agentText == "" {
		return fmt.Errorf("provide --user and/or --agent text")
	}

	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	s, err := eng.Update(ctx, id, userText, agentText)
	if err != nil {
		return err
	}

	fmt.Printf("Updated shard %s (%d exchanges)\n", s.ID, len(s.History))
	return nil
}
