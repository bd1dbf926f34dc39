package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/classifurlr/internal/config"
)

//go:embed templates/classifurlr.yaml
var configTemplate embed.FS

// templatePath is the location of the template inside configTemplate.
const templatePath = "templates/classifurlr.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new classifurlr configuration file",
		Long: `Initialize creates a new .classifurlr configuration file in the current directory.

The generated file includes:
- The default weight of every classifier
- The default filter chain and rollup parameters
- Commented examples for the remaining options

Examples:
  # Create .classifurlr in current directory
  classifurlr init

  # Create config file at a specific path
  classifurlr init -o ~/.config/classifurlr/config.yaml

  # Force overwrite existing file
  classifurlr init -f

  # Print the template
  classifurlr init -p`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().BoolP("print", "p", false,
		"Print the template to stdout instead of writing a file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	toStdout, err := cmd.Flags().GetBool("print")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if err := writeTemplate(outputPath, content, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to tune classification, for example:")
	fmt.Fprintln(out, "  - Classifier weights, or disable a classifier")
	fmt.Fprintln(out, "  - The filter chain")
	fmt.Fprintln(out, "  - Down bias and look-back window of the session rollup")
	return nil
}

// writeTemplate writes content to path with owner-only permissions,
// creating parent directories. An existing file is kept unless force is set.
func writeTemplate(path string, content []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
