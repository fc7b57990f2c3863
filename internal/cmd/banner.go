package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerLogoStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // cyan
	bannerRuleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))           // gray
	bannerLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(10)
)

// bannerInfo is what the startup banner displays.
type bannerInfo struct {
	ProjectRoot string
	DocsDir     string
	EditorURL   string
	SyncURL     string
	RuntimeURL  string
	WithRuntime bool
}

// printBanner prints the startup summary, mirroring the mrmd banner.
func printBanner(info bannerInfo) {
	fmt.Println()
	fmt.Printf("  %s - collaborative markdown notebooks\n", bannerLogoStyle.Render("mrmd"))
	fmt.Printf("  %s\n", bannerRuleStyle.Render(strings.Repeat("─", 45)))
	bannerLine("Project:", info.ProjectRoot)
	bannerLine("Docs:", info.DocsDir)
	bannerLine("Editor:", info.EditorURL)
	bannerLine("Sync:", info.SyncURL)
	if info.WithRuntime {
		bannerLine("Runtime:", info.RuntimeURL)
	}
	fmt.Println()
}

func bannerLine(label, value string) {
	fmt.Printf("  %s %s\n", bannerLabelStyle.Render(label), value)
}
