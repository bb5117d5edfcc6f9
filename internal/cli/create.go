package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCreateCmd creates the 'create' command for minting a new shard.
func NewCreateCmd() *cobra.Command {
	var intent string
	var theme string
	var seed string

	cmd := &cobra.Command{
		Use:   "create <guiding-question>",
		Short: "Create a new conversation shard",
		Long:  `Create a shard organized around a guiding question, optionally seeded with a first user message.`,
		Example: `  shardhub create "How should I plan my career transition?"
  shardhub create "What database fits this workload?" --theme engineering --intent decision
  shardhub create "Trip to Lisbon" --seed "Thinking about a week in Lisbon this fall"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], intent, theme, seed)
		},
	}

	cmd.Flags().StringVarP(&intent, "intent", "i", "", "Intent tag (default: reflection)")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "Theme tag (default: general)")
	cmd.Flags().StringVarP(&seed, "seed", "s", "", "First user message")

	return cmd
}

func runCreate(guidingQuestion, intent, theme, seed string) error {
	ctx := context.Background()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	s, err := eng.Create(ctx, guidingQuestion, intent, theme, seed)
	if err != nil {
		return err
	}

	fmt.Printf("Created shard %s\n", s.ID)
	fmt.Printf("  Question: %s\n", s.GuidingQuestion)
	fmt.Printf("  Tags:     %s / %s\n", s.Tags.Intent, s.Tags.Theme)
	return nil
}
