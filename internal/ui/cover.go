package ui

import "github.com/charmbracelet/lipgloss"

// coverTitle is the name on the cover screen.
const coverTitle = "StockSmart"

// renderCover renders the start screen shown before the inventory.
func (m Model) renderCover() string {
	styles := m.theme.Styles()

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Text)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Bold(true).
		Padding(1, 6).
		Render(coverTitle)

	body := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		styles.MutedText.Render("Know what is in the pantry."),
		"",
		styles.AccentText.Render("enter")+styles.FaintText.Render(" to continue"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.Background)))
}
