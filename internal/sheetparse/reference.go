package sheetparse

import (
	"fmt"
	"strings"

	"salondesk/domain/reference"
	"salondesk/domain/ticket"
)

// ReferenceHeaderScanRows is how far down a reference tab the header is searched for
const ReferenceHeaderScanRows = 10

var headerKeywords = []string{"date", "name", "no", "phone", "salon", "note", "card", "training", "email", "contact"}

// ScoreHeaderRow picks the likeliest header row of a reference tab. Each row
// scores two points per header keyword it mentions plus one per filled cell;
// the first best row wins and row 0 is the default.
func ScoreHeaderRow(rows [][]string, limit int) int {
	best, bestScore := 0, 0
	for i := 0; i < len(rows) && i < limit; i++ {
		var cells []string
		nonEmpty := 0
		for _, v := range rows[i] {
			v = strings.ToLower(strings.TrimSpace(v))
			cells = append(cells, v)
			if v != "" && v != "nan" {
				nonEmpty++
			}
		}
		joined := strings.Join(cells, " ")

		keywords := 0
		for _, kw := range headerKeywords {
			if strings.Contains(joined, kw) {
				keywords++
			}
		}

		if score := keywords*2 + nonEmpty; score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// NormalizeHeaders flattens multi-line titles and names blank ones Unnamed_i
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.ReplaceAll(h, "\r", "")
		h = strings.ReplaceAll(h, "\n", " ")
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed_%d", i)
		}
		out[i] = h
	}
	return out
}

// FindCIDColumn locates the customer id column of a reference table, or -1.
// Priority: an exact "cid", then any "cid" that is not a void/mistake column,
// then "client code"/"salon code", then a bare "code" column.
func FindCIDColumn(headers []string) int {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for i, h := range lower {
		if h == "cid" {
			return i
		}
	}
	for i, h := range lower {
		if strings.Contains(h, "cid") && !strings.Contains(h, "void") && !strings.Contains(h, "mistake") {
			return i
		}
	}
	for i, h := range lower {
		if (strings.Contains(h, "client code") || strings.Contains(h, "salon code")) && !strings.Contains(h, "app") {
			return i
		}
	}
	for i, h := range lower {
		if h == "code" {
			return i
		}
	}
	return -1
}

// FindPhoneColumn returns the first header mentioning a phone, or -1
func FindPhoneColumn(headers []string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), "phone") {
			return i
		}
	}
	return -1
}

// CleanedReference is a reference tab reduced to its data with CID first
type CleanedReference struct {
	Table
	CIDFound       bool
	OriginalCIDCol string
}

// CleanReferenceSheet finds the header, drops blank rows and blank columns,
// renames the customer id column to CID (adding an empty one when absent)
// and moves it to the front.
func CleanReferenceSheet(rows [][]string) CleanedReference {
	if len(rows) == 0 {
		return CleanedReference{Table: Table{Headers: []string{"CID"}}}
	}

	headerIdx := ScoreHeaderRow(rows, ReferenceHeaderScanRows)
	headers := UniqueHeaders(NormalizeHeaders(rows[headerIdx]))
	width := len(headers)

	var data [][]string
	for _, row := range rows[headerIdx+1:] {
		cells := make([]string, width)
		blank := true
		for i := 0; i < width; i++ {
			v := strings.TrimSpace(cell(row, i))
			if v == "nan" {
				v = ""
			}
			cells[i] = v
			if v != "" {
				blank = false
			}
		}
		if !blank {
			data = append(data, cells)
		}
	}

	var keep []int
	for i := 0; i < width; i++ {
		for _, row := range data {
			if row[i] != "" {
				keep = append(keep, i)
				break
			}
		}
	}

	table := Table{Headers: make([]string, len(keep))}
	for j, i := range keep {
		table.Headers[j] = headers[i]
	}
	for _, row := range data {
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}
		table.Rows = append(table.Rows, out)
	}

	result := CleanedReference{}
	cidCol := FindCIDColumn(table.Headers)
	if cidCol >= 0 {
		result.CIDFound = true
		result.OriginalCIDCol = table.Headers[cidCol]
		table.Headers[cidCol] = "CID"
		table = moveColumnFirst(table, cidCol)
	} else {
		table.Headers = append([]string{"CID"}, table.Headers...)
		for i, row := range table.Rows {
			table.Rows[i] = append([]string{""}, row...)
		}
	}
	result.Table = table
	return result
}

func moveColumnFirst(t Table, col int) Table {
	if col == 0 {
		return t
	}
	reorder := func(row []string) []string {
		out := make([]string, 0, len(row))
		out = append(out, row[col])
		out = append(out, row[:col]...)
		return append(out, row[col+1:]...)
	}
	t.Headers = reorder(t.Headers)
	for i, row := range t.Rows {
		t.Rows[i] = reorder(row)
	}
	return t
}

// ReferenceEntries extracts the identifiers of a cleaned reference table
func ReferenceEntries(list string, ref CleanedReference) []reference.Entry {
	phoneCol := ref.Column("Phone")
	if phoneCol < 0 {
		phoneCol = FindPhoneColumn(ref.Headers)
	}

	entries := make([]reference.Entry, 0, len(ref.Rows))
	for _, row := range ref.Rows {
		data := make(map[string]string, len(ref.Headers))
		for i, h := range ref.Headers {
			data[h] = cell(row, i)
		}
		entries = append(entries, reference.Entry{
			List:  list,
			CID:   reference.CleanIdentifier(cell(row, 0)),
			Phone: reference.CleanIdentifier(cell(row, phoneCol)),
			Data:  data,
		})
	}
	return entries
}

// ParseSalonMaster reads the salon master tab. It uses the "Salon Name" and
// "CID" columns when the first row names them, else the first two columns
// of every row. Rows without a CID are dropped.
func ParseSalonMaster(rows [][]string) []reference.Salon {
	if len(rows) == 0 {
		return nil
	}

	nameCol, cidCol, start := 0, 1, 0
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := Table{Headers: header}
	if n, c := t.Column("Salon Name"), t.Column("CID"); n >= 0 && c >= 0 {
		nameCol, cidCol, start = n, c, 1
	}

	var salons []reference.Salon
	for _, row := range rows[start:] {
		cid := reference.CleanIdentifier(cell(row, cidCol))
		if cid == "" {
			continue
		}
		salons = append(salons, reference.Salon{
			CID:  cid,
			Name: strings.TrimSpace(ticket.CleanScalar(cell(row, nameCol))),
		})
	}
	return salons
}
