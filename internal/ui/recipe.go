package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pantry/internal/recipe"
)

// openRecipe opens a web search for recipes using the selected item.
func (m Model) openRecipe() (tea.Model, tea.Cmd) {
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}
	target, err := recipe.SearchURL(m.recipeURL, rec.Name)
	if err != nil {
		m.setError("Recipe search: " + err.Error())
		return m, nil
	}
	m.setStatus("Opening recipes with " + rec.DisplayName() + "...")

	parent, opener, timeout := m.ctx, m.opener, m.opTimeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return recipeMsg{url: target, err: opener(ctx, target)}
	}
}
