package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

// TableColumn represents a column configuration. Width 0 shares the free space.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Table is a scrollable list of rows with one selected row.
type Table struct {
	columns     []TableColumn
	rows        [][]string
	rowStyles   map[int]lipgloss.Style
	width       int
	height      int
	selectedRow int
	offset      int

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
}

// NewTable creates a new table component
func NewTable(columns ...TableColumn) *Table {
	palette := style.DefaultPalette()

	return &Table{
		columns:   columns,
		rowStyles: make(map[int]lipgloss.Style),

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),
	}
}

// SetRows replaces the rows and keeps the selection in range.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = rows
	t.rowStyles = make(map[int]lipgloss.Style)
	if t.selectedRow >= len(rows) {
		t.selectedRow = max(len(rows)-1, 0)
	}
	return t
}

// SetRowColor colors one row, e.g. a failed transaction.
func (t *Table) SetRowColor(index int, color lipgloss.Color) *Table {
	t.rowStyles[index] = t.rowStyle.Foreground(color)
	return t
}

// SetSize sets the table dimensions
func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	return t
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// Selected returns the selected row or nil.
func (t *Table) Selected() []string {
	if t.selectedRow < len(t.rows) {
		return t.rows[t.selectedRow]
	}
	return nil
}

// SelectedIndex returns the selected row index, -1 when the table is empty.
func (t *Table) SelectedIndex() int {
	if t.selectedRow < len(t.rows) {
		return t.selectedRow
	}
	return -1
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	widths := t.columnWidths()
	var content strings.Builder

	header := make([]string, len(t.columns))
	sep := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = renderCell(col.Header, widths[i], col.Align, t.headerStyle)
		sep[i] = strings.Repeat("─", widths[i])
	}
	content.WriteString(strings.Join(header, "│"))
	content.WriteString("\n")
	content.WriteString(strings.Join(sep, "┼"))

	for i, row := range t.visibleRows() {
		index := t.offset + i
		rowStyle := t.rowStyle
		if s, ok := t.rowStyles[index]; ok {
			rowStyle = s
		}
		if index == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		cells := make([]string, len(t.columns))
		for c, col := range t.columns {
			var data string
			if c < len(row) {
				data = row[c]
			}
			cells[c] = renderCell(data, widths[c], col.Align, rowStyle)
		}
		content.WriteString("\n")
		content.WriteString(strings.Join(cells, "│"))
	}

	return t.borderStyle.Render(content.String())
}

// visibleRows scrolls the window so the selected row stays visible.
func (t *Table) visibleRows() [][]string {
	limit := t.height - 4 // border, header, separator
	if limit <= 0 || len(t.rows) <= limit {
		t.offset = 0
		return t.rows
	}
	if t.selectedRow < t.offset {
		t.offset = t.selectedRow
	}
	if t.selectedRow >= t.offset+limit {
		t.offset = t.selectedRow - limit + 1
	}
	return t.rows[t.offset : t.offset+limit]
}

func renderCell(content string, width int, align lipgloss.Position, st lipgloss.Style) string {
	inner := width - 2 // cell padding
	if inner > 3 && lipgloss.Width(content) > inner {
		r := []rune(content)
		if len(r) > inner-3 {
			content = string(r[:inner-3]) + "..."
		}
	}
	return st.Width(width).Align(align).Render(content)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	fixed, auto := 0, 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			fixed += col.Width
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}
	free := t.width - fixed - (len(t.columns) - 1) - 2
	share := 12
	if free > 0 && free/auto > share {
		share = free / auto
	}
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}
