// Package portal holds the result shape of a salon portal lookup
package portal

// Table is the first result table found on the portal search page
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table has no data rows
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}
