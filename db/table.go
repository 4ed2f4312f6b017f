package db

import (
	"fmt"
	"io"
	"strings"
)

// maxCellWidth caps how wide a single cell may render before truncation.
const maxCellWidth = 120

// ResultTable renders a row set as an ASCII table without external
// dependencies. Cells wider than maxCellWidth are truncated with an
// ellipsis so that a single long value cannot blow out the layout.
type ResultTable struct {
	writer  io.Writer
	columns []string
	cells   [][]string
}

// NewResultTable creates a table writer targeting w.
func NewResultTable(w io.Writer) *ResultTable {
	return &ResultTable{writer: w}
}

// Columns sets the header row.
func (table *ResultTable) Columns(columns []string) {
	table.columns = columns
}

// Append adds a single rendered row.
func (table *ResultTable) Append(cells []string) {
	table.cells = append(table.cells, cells)
}

// FromRowSet loads the table from a query result, preserving column order
// and rendering NULL for missing values.
func (table *ResultTable) FromRowSet(set *RowSet) {
	table.columns = set.Columns
	table.cells = table.cells[:0]
	for _, row := range set.Rows {
		cells := make([]string, len(set.Columns))
		for i, column := range set.Columns {
			cells[i] = renderCell(row[column])
		}
		table.cells = append(table.cells, cells)
	}
}

// Render writes the formatted table.
func (table *ResultTable) Render() {
	if len(table.columns) == 0 && len(table.cells) == 0 {
		return
	}

	widths := table.widths()
	rule := table.rule(widths)

	fmt.Fprintln(table.writer, rule)
	if len(table.columns) > 0 {
		fmt.Fprintln(table.writer, table.line(table.columns, widths))
		fmt.Fprintln(table.writer, rule)
	}
	for _, cells := range table.cells {
		fmt.Fprintln(table.writer, table.line(cells, widths))
	}
	fmt.Fprintln(table.writer, rule)
}

func (table *ResultTable) widths() []int {
	count := len(table.columns)
	for _, cells := range table.cells {
		if len(cells) > count {
			count = len(cells)
		}
	}

	widths := make([]int, count)
	for i, column := range table.columns {
		widths[i] = len(clip(column))
	}
	for _, cells := range table.cells {
		for i, cell := range cells {
			if i < count && len(clip(cell)) > widths[i] {
				widths[i] = len(clip(cell))
			}
		}
	}
	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}
	return widths
}

func (table *ResultTable) rule(widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func (table *ResultTable) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = clip(cells[i])
		}
		parts[i] = " " + cell + strings.Repeat(" ", width-len(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}

func clip(cell string) string {
	if len(cell) <= maxCellWidth {
		return cell
	}
	return cell[:maxCellWidth-3] + "..."
}

func renderCell(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}
