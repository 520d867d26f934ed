package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// startSearch focuses the search line, seeded with the current term.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	m.searching = true
	m.searchInput.SetValue(m.view.Term)
	m.searchInput.CursorEnd()
	return m, tea.Batch(m.searchInput.Focus(), textinput.Blink)
}

// handleSearchKey edits the search term. Every edit re-filters the view;
// enter keeps the term and esc clears it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.searchInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applySearch("")
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if term := m.searchInput.Value(); term != before {
		m.applySearch(term)
	}
	return m, cmd
}

// applySearch narrows the view to term. It never touches the store.
func (m *Model) applySearch(term string) {
	if m.manager == nil {
		return
	}
	m.view = m.manager.SetSearchTerm(term)
	m.keepSelection()
}
