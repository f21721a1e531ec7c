package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/threadscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/threadscan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a jobs file template",
		Long: `Initialize creates a .threadscan.yaml jobs file in the current directory.

The generated file includes:
- A defaults section shared by every job
- One example job per supported page type
- Comments documenting every option

Examples:
  # Create .threadscan.yaml in current directory
  threadscan init

  # Create the jobs file at a specific path
  threadscan init -o jobs.yaml

  # Force overwrite existing file
  threadscan init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the jobs file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing jobs file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("jobs file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/threadscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read jobs template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write jobs file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created jobs file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit the jobs list, then run:")
	fmt.Fprintf(out, "  threadscan scrape --jobs %s\n", outputPath)

	return nil
}
