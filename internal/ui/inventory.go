package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pantry/internal/inventory"
)

// keepSelection re-finds the selected record by name after the view changes,
// clamping to the visible range when it is gone.
func (m *Model) keepSelection() {
	records := m.view.Records
	if len(records) == 0 {
		m.selectedRow = 0
		m.selectedName = ""
		return
	}
	if m.selectedName != "" {
		for i, r := range records {
			if r.Name == m.selectedName {
				m.selectedRow = i
				return
			}
		}
	}
	m.selectedRow = clamp(m.selectedRow, 0, len(records)-1)
	m.selectedName = records[m.selectedRow].Name
}

// selectByName moves the selection to name if it is visible.
func (m *Model) selectByName(name string) {
	for i, r := range m.view.Records {
		if r.Name == name {
			m.selectedRow = i
			m.selectedName = name
			return
		}
	}
}

// selectedRecord returns the record under the cursor.
func (m Model) selectedRecord() (inventory.Record, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.view.Records) {
		return inventory.Record{}, false
	}
	return m.view.Records[m.selectedRow], true
}

func (m *Model) moveSelection(msg tea.KeyMsg) {
	count := len(m.view.Records)
	if count == 0 {
		return
	}
	half := max(m.tableRows()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow += half
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow -= half
	default:
		return
	}
	m.selectedRow = clamp(m.selectedRow, 0, count-1)
	m.selectedName = m.view.Records[m.selectedRow].Name
}

// contentHeight is the height left after header, command bar and status line.
func (m Model) contentHeight() int {
	return max(m.height-3, 3)
}

// tableRows is how many record rows fit inside the inventory box.
func (m Model) tableRows() int {
	// box borders and the column header
	return max(m.contentHeight()-3, 1)
}

// renderInventory renders the inventory table in a titled box.
func (m Model) renderInventory() string {
	height := m.contentHeight()
	content := m.renderInventoryTable(m.width-2, m.theme.FocusBg)
	return m.renderTitledBox(m.inventoryTitle(), content, m.width, height, true)
}

// inventoryTitle returns "Inventory (visible/total)" plus the active search.
func (m Model) inventoryTitle() string {
	visible := len(m.view.Records)
	title := fmt.Sprintf("Inventory (%d/%d)", visible, m.view.Total)
	if m.view.Term != "" {
		title += fmt.Sprintf(" /%s", truncate(m.view.Term, 20))
	}
	return title
}

type inventoryColumns struct {
	serial   int
	name     int
	quantity int
	category int
}

func columnsFor(width int) inventoryColumns {
	cols := inventoryColumns{quantity: 6}
	if width >= LayoutSerialWidth {
		cols.serial = 14
	}
	if width >= LayoutCategoryWidth {
		cols.category = 16
	}
	// marker column, gaps between columns
	used := 2 + cols.quantity + 1
	if cols.serial > 0 {
		used += cols.serial + 1
	}
	if cols.category > 0 {
		used += cols.category + 1
	}
	cols.name = max(width-used, 8)
	return cols
}

// renderInventoryTable renders the column header and the visible rows.
func (m Model) renderInventoryTable(width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	if len(m.view.Records) == 0 {
		msg := "No items yet. Press a to add some."
		if m.view.Term != "" {
			msg = fmt.Sprintf("No items match %q. Press esc to clear the search.", m.view.Term)
		}
		return bg.FillLine(bg.Render(" "+msg, styles.MutedText), width)
	}

	cols := columnsFor(width)
	lines := make([]string, 0, m.tableRows()+1)
	lines = append(lines, bg.FillLine(styles.FaintText.Render(formatRow(cols, " ", "Serial", "Name", "Qty", "Category")), width))

	rows := m.tableRows()
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(m.view.Records))

	for i := start; i < end; i++ {
		r := m.view.Records[i]
		marker := " "
		if _, ok := m.flash[r.Name]; ok {
			marker = "+"
		}
		line := formatRow(cols, marker, r.SerialNumber, r.DisplayName(), strconv.Itoa(r.Quantity), r.Category)

		switch {
		case i == m.selectedRow:
			line = styles.Selected.Width(width).Render(line)
		case marker != " ":
			line = bg.FillLine(styles.SuccessText.Render(line), width)
		default:
			line = bg.FillLine(styles.Text.Render(line), width)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatRow(cols inventoryColumns, marker, serial, name, quantity, category string) string {
	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(" ")
	if cols.serial > 0 {
		b.WriteString(padRight(truncate(serial, cols.serial), cols.serial))
		b.WriteString(" ")
	}
	b.WriteString(padRight(truncate(name, cols.name), cols.name))
	b.WriteString(" ")
	b.WriteString(padLeft(truncate(quantity, cols.quantity), cols.quantity))
	if cols.category > 0 {
		b.WriteString(" ")
		b.WriteString(padRight(truncate(category, cols.category), cols.category))
	}
	return b.String()
}

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)
	lines := make([]string, 0, boxHeight+2)
	lines = append(lines, topBorder)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	lines = append(lines, bottomBorder)
	return strings.Join(lines, "\n")
}
