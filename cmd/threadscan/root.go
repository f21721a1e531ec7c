package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for threadscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threadscan",
		Short: "Scrape the comment threads of a video page",
		Long: `threadscan walks the comment section of a video page, expanding every reply
thread, and writes the comments to a JSON, CSV or Markdown document.

Traversal can be bounded by a comment count and a time limit, and threads can
be filtered with a case-insensitive regular expression. Every run is recorded
in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. An interrupt cancels the running traversal,
// which still completes its output document.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
