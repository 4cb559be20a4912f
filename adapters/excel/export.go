package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"salondesk/domain/ticket"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the tab name of generated exports
const ExportSheet = "Tickets"

// WriteXLSX writes a single-tab workbook with a bold header row
func WriteXLSX(w io.Writer, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(ExportSheet, "A1", last, bold); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ExportSheet, start, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes a header row followed by rows
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// ExportTickets writes tickets as an xlsx workbook in the given column order
func ExportTickets(w io.Writer, tickets []ticket.Ticket, columns []string) error {
	return WriteXLSX(w, columns, ticket.Rows(tickets, columns))
}

// CSVFiles writes tables to CSV files on disk
type CSVFiles struct {
	// BOM prefixes files with a UTF-8 byte order mark so Excel opens Vietnamese text correctly
	BOM bool
}

// WriteTable creates or truncates path and writes the table
func (c CSVFiles) WriteTable(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if c.BOM {
		if _, err := f.WriteString("\ufeff"); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := WriteCSV(f, headers, rows); err != nil {
		return err
	}
	return f.Close()
}
