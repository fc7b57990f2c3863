package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mrmd/mrmd/internal/config"
	"github.com/mrmd/mrmd/internal/supervisor"
	"github.com/mrmd/mrmd/internal/web"
)

var statusPort int

var (
	statusRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))  // green
	statusStoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	statusNameStyle    = lipgloss.NewStyle().Bold(true)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running mrmd server and its services",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusPort, "port", "p", config.DefaultServerPort, "HTTP server port")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 3 * time.Second}
	baseURL := fmt.Sprintf("http://localhost:%d", statusPort)

	var status web.StatusResponse
	if err := getJSON(client, baseURL+"/api/status", &status); err != nil {
		return fmt.Errorf("no mrmd server running on port %d", statusPort)
	}

	var processes map[string]supervisor.ProcessStatus
	if err := getJSON(client, baseURL+"/api/processes", &processes); err != nil {
		return fmt.Errorf("fetching process status: %w", err)
	}

	fmt.Printf("%s at %s\n", statusNameStyle.Render("mrmd"), baseURL)
	fmt.Printf("  Project: %s\n", status.Project["root"])
	fmt.Printf("  Docs:    %s\n", status.Project["docs"])
	fmt.Println()

	if len(processes) == 0 {
		fmt.Println("  no managed processes")
		return nil
	}

	names := make([]string, 0, len(processes))
	for name := range processes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := processes[name]
		switch {
		case p.Running && p.PID != nil:
			fmt.Printf("  %-14s %s (PID %d)\n", name, statusRunningStyle.Render("running"), *p.PID)
		case p.ExitCode != nil:
			fmt.Printf("  %-14s %s (exit code %d)\n", name, statusStoppedStyle.Render("stopped"), *p.ExitCode)
		default:
			fmt.Printf("  %-14s %s\n", name, statusStoppedStyle.Render("stopped"))
		}
	}
	return nil
}

// getJSON fetches url and decodes the JSON body into v.
func getJSON(client *http.Client, url string, v interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
