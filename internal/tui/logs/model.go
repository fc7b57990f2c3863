// Package logs provides a terminal viewer for the captured output of
// a managed mrmd service, polled from a running server's API.
package logs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// pollInterval is how often we refresh the output buffer.
const pollInterval = time.Second

// fetchLines is how much of the server-side buffer we request; it
// matches the supervisor's buffer capacity.
const fetchLines = 1000

type keyMap struct {
	Bottom key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type tickMsg time.Time

type linesMsg []string

type errMsg struct{ err error }

// outputResponse mirrors the /api/processes/{name}/output payload.
type outputResponse struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// Model is the bubbletea model for the log viewer.
type Model struct {
	name    string
	baseURL string
	client  *http.Client

	viewport viewport.Model
	ready    bool
	follow   bool
	lines    []string
	err      error
}

func newModel(name, baseURL string) Model {
	return Model{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
		follow:  true,
	}
}

// Run starts the log viewer and blocks until the user quits.
func Run(name, baseURL string) error {
	p := tea.NewProgram(newModel(name, baseURL), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetch polls the output endpoint once.
func (m Model) fetch() tea.Cmd {
	url := fmt.Sprintf("%s/api/processes/%s/output?lines=%d", m.baseURL, m.name, fetchLines)
	client := m.client
	return func() tea.Msg {
		resp, err := client.Get(url)
		if err != nil {
			return errMsg{err}
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return errMsg{fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}
		var out outputResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return errMsg{err}
		}
		return linesMsg(out.Lines)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Bottom):
			m.viewport.GotoBottom()
			m.follow = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		height := msg.Height - headerHeight - footerHeight
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
			m.setContent()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), tick())

	case linesMsg:
		m.err = nil
		m.lines = msg
		m.setContent()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	// Scrolling up pauses follow; returning to the bottom resumes it.
	m.follow = m.viewport.AtBottom()
	return m, cmd
}

func (m *Model) setContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := fmt.Sprintf("%s %s",
		titleStyle.Render("logs"),
		headerInfoStyle.Render(m.name))
	if m.err != nil {
		header = fmt.Sprintf("%s %s", header, errorStyle.Render(m.err.Error()))
	}

	footer := footerStyle.Render(fmt.Sprintf("%d lines · G bottom · q quit", len(m.lines)))

	return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
}
