package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pantry/internal/logtail"
)

// logState holds the log view state.
type logState struct {
	entries  []logtail.Entry
	follow   bool
	disabled bool
	err      error

	// bumped on every load so the viewport only re-renders on change
	contentVersion uint64
	lastRendered   uint64
}

type logsMsg struct {
	entries  []logtail.Entry
	err      error
	disabled bool
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.contentHeight()-2, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport resizes the viewport and re-renders content if it changed.
func (m *Model) updateLogViewport() {
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.contentHeight()-2, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.lastRendered != m.logState.contentVersion || m.logState.lastRendered == 0 {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = m.logState.contentVersion
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.disabled = msg.disabled
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.contentVersion++
	m.updateLogViewport()
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == " ":
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Up, m.keys.HalfPageUp):
		m.logState.follow = false
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// renderLogs renders the log view in a titled box.
func (m Model) renderLogs() string {
	title := fmt.Sprintf("Log (%d lines)", len(m.logState.entries))
	if !m.logState.follow {
		title += " paused"
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}

// renderLogContent renders the colorized log lines.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)

	switch {
	case m.logState.disabled:
		return styles.MutedText.Render("Logging to file is disabled (log.path is empty).")
	case m.logState.err != nil:
		return styles.DangerText.Render("Read log: " + m.logState.err.Error())
	case len(m.logState.entries) == 0:
		return styles.MutedText.Render("No log lines yet.")
	}

	width := max(m.logViewport.Width, 10)
	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		line := truncate(e.Format(), width)
		if e.Level == "" {
			lines = append(lines, styles.Text.Render(line))
			continue
		}
		lines = append(lines, styles.LevelStyle(e.Level).Render(line))
	}
	return strings.Join(lines, "\n")
}
