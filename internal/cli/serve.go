package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/novamem/shardhub/internal/mcp"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
func NewServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the shardhub server using stdio transport.

The server exposes shard memory tools to AI clients:
  shard_interact, shard_create, shard_update, shard_search,
  shard_deep_search, shard_list, shard_merge, shard_archive,
  shard_curate, shard_validate_citations

plus the shard://index resource with the full index snapshot.`,
		Example: `  # Run directly
  shardhub serve

  # Add to Claude Code
  claude mcp add shardhub -- shardhub serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(version)
		},
	}

	return cmd
}

// runServe starts the MCP server with stdio transport and graceful
// shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(version string) error {
	// Protocol owns stdout; everything else goes to stderr.
	log.SetOutput(os.Stderr)

	eng, err := openEngine(context.Background())
	if err != nil {
		return err
	}

	server := mcp.NewServer(eng, version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v, shutting down gracefully...", sig)
		if err := eng.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
			return err
		}
		log.Println("Shutdown complete")
		return nil

	case err := <-errChan:
		// Run returned (stdin closed or error); resources still need cleanup.
		if closeErr := eng.Close(); closeErr != nil {
			log.Printf("Error during cleanup: %v", closeErr)
		}
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
