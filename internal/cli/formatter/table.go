package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// colGap is the number of spaces between columns.
const colGap = 2

// Table is an aligned plain-text table with a styled header and a separator
// line. Widths are measured on visible characters, so styled cells align.
type Table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

// NewTable starts a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, right: map[int]bool{}}
}

// AlignRight right-aligns the given columns, for durations and counts.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// Row appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) Row(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// Len reports the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}
	return widths
}

func (t *Table) writeCell(b *strings.Builder, col, width int, cell string, last bool) {
	pad := max(width-lipgloss.Width(cell), 0)
	if t.right[col] {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(cell)
		pad = 0
	} else {
		b.WriteString(cell)
	}
	if !last {
		b.WriteString(strings.Repeat(" ", pad+colGap))
	}
}

// Render returns the table, one line per row, each ending in a newline.
func (t *Table) Render() string {
	cols := len(t.headers)
	if cols == 0 {
		return ""
	}
	widths := t.widths()

	var b strings.Builder
	for i, h := range t.headers {
		t.writeCell(&b, i, widths[i], StyleHeader.Render(h), i == cols-1)
	}
	b.WriteString("\n")

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			t.writeCell(&b, i, widths[i], cell, i == cols-1)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable renders headers and rows with every column left-aligned.
func RenderTable(headers []string, rows [][]string) string {
	t := NewTable(headers...)
	for _, r := range rows {
		t.Row(r...)
	}
	return t.Render()
}
