// Package sheetparse turns raw spreadsheet tabs into tickets and reference tables.
//
// Report workbooks are maintained by hand: the header row floats a few rows down,
// column titles drift between months, and daily workbooks carry the date only in
// the tab title. The functions here recover a stable shape from that input.
package sheetparse

// Table is a rectangular grid with named columns
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of a header, or -1
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row/column name, empty when either is missing
func (t *Table) Value(row int, name string) string {
	col := t.Column(name)
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return cell(t.Rows[row], col)
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
