/*
Package main is the entry point for the shardhub CLI.

shardhub is a shard-based conversational memory engine for LLM agents.
Conversations are stored as shards: bounded conversation fragments
organized around a guiding question, retrievable by ranked search and
loadable into an agent's context on demand.

Usage:
  shardhub [command]

Available Commands:
  serve       Run the MCP server (stdio transport)
  create      Create a new conversation shard
  update      Append an exchange to a shard's history
  search      Ranked search over the shard index
  deep-search Full-text search over conversation history
  list        List the shard index with status tags
  get         Show a shard in full
  merge       Merge a secondary shard into a primary one
  archive     Archive or restore a shard
  rm          Delete a shard permanently
  curate      Report duplicates, merge and archival candidates
  enrich      Generate summary, topics, and embedding for shards
  validate    Check cited shard ids against a loaded set
  stats       Show corpus-level counts

Examples:
  # Run as MCP server
  shardhub serve

  # Create and grow a shard
  shardhub create "How should I plan my career transition?"
  shardhub update 01J8X... --user "Thinking about data engineering"

  # Find it again later
  shardhub search "career planning"
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novamem/shardhub/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shardhub",
		Short: "Shard-based conversational memory for LLM agents",
		Long: `shardhub stores conversations as shards: bounded fragments organized
around a guiding question, each carrying its own history, tags, topics,
and usage record.

Agents retrieve shards by ranked search (lexical overlap plus optional
semantic similarity, dampened by recency/usage decay) and load them into
context on demand. Every load is counted, so the corpus learns which
memories matter.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewServeCmd(version))
	rootCmd.AddCommand(cli.NewCreateCmd())
	rootCmd.AddCommand(cli.NewUpdateCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewDeepSearchCmd())
	rootCmd.AddCommand(cli.NewListCmd())
	rootCmd.AddCommand(cli.NewGetCmd())
	rootCmd.AddCommand(cli.NewMergeCmd())
	rootCmd.AddCommand(cli.NewArchiveCmd())
	rootCmd.AddCommand(cli.NewRemoveCmd())
	rootCmd.AddCommand(cli.NewCurateCmd())
	rootCmd.AddCommand(cli.NewEnrichCmd())
	rootCmd.AddCommand(cli.NewValidateCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
