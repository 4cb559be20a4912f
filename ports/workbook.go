package ports

import (
	"context"

	"salondesk/domain/ticket"
)

// WorkbookSource reads report spreadsheets tab by tab
type WorkbookSource interface {
	Name() string
	Tabs(ctx context.Context, sheet string) ([]string, error)
	// ReadTab returns the formatted cell text of every row
	ReadTab(ctx context.Context, sheet, tab string) ([][]string, error)
}

// WorkbookWriter writes edited cells back to a report spreadsheet
type WorkbookWriter interface {
	// UpdateCells sets cells of origin's row; values are keyed by 0-based column index
	UpdateCells(ctx context.Context, origin ticket.Origin, values map[int]string) error
}

// TableExporter writes a header and rows to a file
type TableExporter interface {
	WriteTable(path string, headers []string, rows [][]string) error
}
