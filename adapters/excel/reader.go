// Package excel reads and writes report workbooks kept as local .xlsx or .csv files
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"salondesk/internal/errors"

	"github.com/xuri/excelize/v2"
)

// CSVTab is the tab name a CSV workbook exposes
const CSVTab = "Sheet1"

// Source reads workbooks from a directory. A sheet named "2-3-4 DAILY REPORT 12/25"
// is stored as "2-3-4 DAILY REPORT 12_25.xlsx".
type Source struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewSource creates a workbook source over dir
func NewSource(dir string) *Source {
	return &Source{dir: dir, locks: make(map[string]*sync.RWMutex)}
}

// Name identifies the source in logs
func (s *Source) Name() string {
	return "excel"
}

// Dir returns the directory workbooks are read from
func (s *Source) Dir() string {
	return s.dir
}

// FileName maps a sheet name onto its file name without extension
func FileName(sheet string) string {
	return strings.ReplaceAll(sheet, "/", "_")
}

// Path resolves the file backing a sheet, preferring .xlsx over .csv
func (s *Source) Path(sheet string) (string, error) {
	base := filepath.Join(s.dir, FileName(sheet))
	for _, ext := range []string{".xlsx", ".csv"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", errors.NotFound(fmt.Sprintf("workbook %q in %s", sheet, s.dir))
}

func (s *Source) lockFor(path string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[path] = l
	}
	return l
}

// Tabs lists the tabs of a workbook in order
func (s *Source) Tabs(ctx context.Context, sheet string) ([]string, error) {
	path, err := s.Path(sheet)
	if err != nil {
		return nil, err
	}
	if isCSV(path) {
		return []string{CSVTab}, nil
	}

	l := s.lockFor(path)
	l.RLock()
	defer l.RUnlock()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// ReadTab returns the formatted text of every row of a tab
func (s *Source) ReadTab(ctx context.Context, sheet, tab string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(sheet)
	if err != nil {
		return nil, err
	}

	l := s.lockFor(path)
	l.RLock()
	defer l.RUnlock()

	if isCSV(path) {
		if tab != CSVTab {
			return nil, errors.NotFound(fmt.Sprintf("tab %q of %s", tab, sheet))
		}
		return readCSV(path)
	}

	readStart := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(tab); idx < 0 {
		return nil, errors.NotFound(fmt.Sprintf("tab %q of %s", tab, sheet))
	}

	rows, err := f.GetRows(tab)
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	log.Printf("[ExcelSource] %s/%s read in %.2fms (%d rows)",
		sheet, tab, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return rows, nil
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
