package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldName = iota
	fieldQuantity
	fieldSerial
	fieldCategory
	fieldCount
)

var addFieldLabels = [fieldCount]string{"Name", "Quantity", "Serial number", "Category"}

// addModal is the "Add Items" form.
type addModal struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

var _ Modal = addModal{}

func newAddModal() addModal {
	var m addModal
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		m.inputs[i] = ti
	}
	m.inputs[fieldName].Placeholder = "e.g. eggs"
	m.inputs[fieldQuantity].CharLimit = 9
	m.inputs[fieldQuantity].SetValue("1")
	m.inputs[fieldSerial].Placeholder = "optional"
	m.inputs[fieldCategory].Placeholder = "optional"
	m.inputs[fieldName].Focus()
	return m
}

func (m addModal) Update(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit, true

	case key.Matches(msg, keys.Cancel):
		return m, nil, true

	case key.Matches(msg, keys.NextField):
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd, false

	case key.Matches(msg, keys.PrevField):
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd, false

	case key.Matches(msg, keys.Confirm):
		req, errMsg := m.request()
		if errMsg != "" {
			m.err = errMsg
			return m, nil, false
		}
		return m, func() tea.Msg { return req }, true
	}

	m.err = ""
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

// setFocus moves the cursor to field i.
func (m *addModal) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[i].CursorEnd()
	return m.inputs[i].Focus()
}

// request validates the form. A non-empty message means the form stays open.
func (m addModal) request() (addRequestMsg, string) {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		return addRequestMsg{}, "Name is required"
	}
	qty, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldQuantity].Value()))
	if err != nil || qty <= 0 {
		return addRequestMsg{}, "Quantity must be a whole number above zero"
	}
	return addRequestMsg{
		name:         name,
		quantity:     qty,
		serialNumber: strings.TrimSpace(m.inputs[fieldSerial].Value()),
		category:     strings.TrimSpace(m.inputs[fieldCategory].Value()),
	}, ""
}

func (m addModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Add Items"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 36)))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		labelStyle := styles.MutedText
		if i == m.focus {
			labelStyle = styles.AccentText.Bold(true)
		}
		b.WriteString(labelStyle.Width(15).Render(addFieldLabels[i]))
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(styles.DangerText.Render(m.err))
	} else {
		b.WriteString(styles.FaintText.Render("tab next • enter add • esc cancel"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(48).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)))
}
