// Package cmd provides CLI commands for the mrmd tool.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the mrmd release version.
var Version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:     "mrmd",
	Short:   "Collaborative markdown notebooks",
	Version: Version,
	Long: `mrmd opens the current project as a collaborative markdown
notebook: it serves the editor over HTTP and manages the sync and
code-execution services as child processes.

mrmd detects your project root by looking for .git, .venv,
pyproject.toml, package.json, or go.mod.`,
	Args:         cobra.NoArgs,
	RunE:         runServe,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mrmd version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mrmd %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
