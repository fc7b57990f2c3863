package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var previewWidth int

var previewCmd = &cobra.Command{
	Use:   "preview <file.md>",
	Short: "Render a markdown document in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewWidth, "width", 100, "word wrap width")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	out, err := renderer.Render(string(content))
	if err != nil {
		return fmt.Errorf("rendering %s: %w", args[0], err)
	}
	fmt.Print(out)
	return nil
}
