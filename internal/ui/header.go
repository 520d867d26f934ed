package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pantry/internal/inventory"
)

// renderMain renders header, command bar, the active view and the status line.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderInventory())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderHeader renders the status bar with the inventory summary.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("pantry", styles.Logo)}

	snap := m.snapshot
	switch {
	case snap.IsStale():
		last := "never"
		if !snap.LastSuccess.IsZero() {
			last = snap.LastSuccess.Format("15:04:05")
		}
		parts = append(parts,
			bg.Render("STORE "+classifyStoreError(snap.LastError), styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
			bg.Render("last good "+last, styles.MutedText),
		)
	case !snap.HasData:
		parts = append(parts, bg.Render("Loading inventory...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	if snap.HasData {
		parts = append(parts,
			bg.Render("Items:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(snap.Items)), styles.Text),
			bg.Render("Units:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", inventory.TotalUnits(snap.Items)), styles.Text),
		)
	}

	if m.width >= LayoutCompactWidth {
		if !snap.LastSuccess.IsZero() && !snap.IsStale() {
			parts = append(parts,
				bg.Render("Updated", styles.FaintText)+bg.Space()+
					bg.Render(snap.LastSuccess.Format("15:04:05"), styles.MutedText))
		}
		if m.backend != "" {
			parts = append(parts, bg.Render("store", styles.FaintText)+bg.Space()+
				bg.Render(m.backend, styles.MutedText))
		}
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, sep))
}

// classifyStoreError condenses a refresh error into a short badge.
func classifyStoreError(err error) string {
	if err == nil {
		return "OK"
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(err.Error(), "timeout"):
		return "TIMEOUT"
	case errors.Is(err, inventory.ErrStoreUnavailable):
		return "OFFLINE"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		follow := "Pause"
		if !m.logState.follow {
			follow = "Follow"
		}
		commands = []cmd{
			{"Space", follow},
			{"j/k", "Scroll"},
			{"q", "Inventory"},
			{"R", "Refresh"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"a", "Add"},
			{"+", "One more"},
			{"-", "One less"},
			{"/", "Search"},
			{"r", "Recipes"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Surface)).Render(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.searching {
		segments = append(segments, m.searchInput.View())
	} else if m.view.Term != "" && m.currentView == ViewInventory {
		segments = append(segments, bg.Render("/"+truncate(m.view.Term, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatusLine renders the result of the last action.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	text := m.status
	style := styles.MutedText
	if m.statusError {
		style = styles.DangerText
	}
	if text == "" && m.logPath != "" {
		text = "logs " + truncateMiddle(m.logPath, 60)
		style = styles.FaintText
	}
	return style.MaxWidth(m.width).Render(text)
}
