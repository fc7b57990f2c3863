package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrmd/mrmd/internal/config"
	"github.com/mrmd/mrmd/internal/tui/logs"
)

var logsPort int

var logsCmd = &cobra.Command{
	Use:   "logs [process]",
	Short: "Follow the output of a managed service",
	Long: `Follow the captured output of a managed service from a running
mrmd server. Defaults to the sync service.

Known process names: mrmd-sync, mrmd-python.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsPort, "port", "p", config.DefaultServerPort, "HTTP server port")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	name := syncProcess
	if len(args) == 1 {
		name = args[0]
	}
	baseURL := fmt.Sprintf("http://localhost:%d", logsPort)
	return logs.Run(name, baseURL)
}
