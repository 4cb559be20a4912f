package excel

import (
	"context"
	"fmt"
	"log"
	"sort"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Writer writes ticket edits back into the workbook files of a Source
type Writer struct {
	source *Source
}

// NewWriter creates a writer sharing the source's file locks
func NewWriter(source *Source) *Writer {
	return &Writer{source: source}
}

// UpdateCells sets cells on origin's row and saves the workbook
func (w *Writer) UpdateCells(ctx context.Context, origin ticket.Origin, values map[int]string) error {
	if len(values) == 0 {
		return nil
	}
	path, err := w.source.Path(origin.Sheet)
	if err != nil {
		return err
	}
	if isCSV(path) {
		return errors.ReadOnly(fmt.Sprintf("workbook %q is a CSV export and cannot be edited", origin.Sheet))
	}

	l := w.source.lockFor(path)
	l.Lock()
	defer l.Unlock()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(origin.Tab); idx < 0 {
		return errors.NotFound(fmt.Sprintf("tab %q of %s", origin.Tab, origin.Sheet))
	}

	cols := make([]int, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	for _, col := range cols {
		cell, err := excelize.CoordinatesToCellName(col+1, origin.Row)
		if err != nil {
			return fmt.Errorf("failed to address column %d row %d: %w", col, origin.Row, err)
		}
		if err := f.SetCellValue(origin.Tab, cell, values[col]); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", origin.Tab, cell, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[ExcelWriter] Updated %d cells on %s/%s row %d", len(cols), origin.Sheet, origin.Tab, origin.Row)
	return nil
}
