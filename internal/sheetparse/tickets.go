package sheetparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"salondesk/domain/ticket"
)

// TicketHeaderScanRows is how far down a tab the ticket header is searched for
const TicketHeaderScanRows = 15

// FindTicketHeader returns the first row within limit whose text mentions a salon
// and a name, or -1.
func FindTicketHeader(rows [][]string, limit int) int {
	for i := 0; i < len(rows) && i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(joined, "salon") && (strings.Contains(joined, "name") || strings.Contains(joined, "tên")) {
			return i
		}
	}
	return -1
}

// UniqueHeaders trims headers and suffixes repeats with _1, _2, ...
func UniqueHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			out[i] = fmt.Sprintf("%s_%d", h, n+1)
			continue
		}
		seen[h] = 0
		out[i] = h
	}
	return out
}

// CanonicalColumn maps a report header onto a canonical ticket column.
// STT is the date column only in TOTAL workbooks and is never mapped otherwise.
func CanonicalColumn(header string, isTotal bool) (string, bool) {
	c := strings.ToLower(header)
	switch {
	case strings.Contains(c, "stt"):
		if isTotal {
			return ticket.ColDate, true
		}
		return "", false
	case strings.Contains(c, "salon") && strings.Contains(c, "name"):
		return ticket.ColSalonName, true
	case strings.Contains(c, "name"):
		return ticket.ColAgentName, true
	case strings.Contains(c, "time"):
		return ticket.ColSupportTime, true
	case strings.Contains(c, "owner"):
		return ticket.ColCallerInfo, true
	case strings.Contains(c, "phone"):
		return ticket.ColPhone, true
	case strings.Contains(c, "cid"):
		return ticket.ColCID, true
	case strings.Contains(c, "training"):
		return ticket.ColTrainingNote, true
	case strings.Contains(c, "demo"):
		return ticket.ColDemoNote, true
	case strings.Contains(c, "contact"):
		return ticket.ColContact, true
	case strings.Contains(c, "card") || strings.Contains(c, "16"):
		return ticket.ColCard16Digits, true
	case strings.Contains(c, "note"):
		return ticket.ColNote, true
	case strings.Contains(c, "status"):
		return ticket.ColStatus, true
	}
	return "", false
}

// IsTotalReport reports whether a workbook is a yearly TOTAL REPORT
func IsTotalReport(sheet string) bool {
	return strings.Contains(strings.ToUpper(sheet), "TOTAL REPORT")
}

// DataTabStart returns the index of the first ticket tab. Daily workbooks open
// with two summary tabs when they have at least three.
func DataTabStart(isTotal bool, tabCount int) int {
	if !isTotal && tabCount >= 3 {
		return 2
	}
	return 0
}

var sheetMonthPattern = regexp.MustCompile(`(\d{1,2})[/_](\d{2})\s*$`)

// TabDate derives the ticket date of a daily tab. A day-number tab takes month
// and year from a trailing MM/YY (or MM_YY) in the workbook name.
func TabDate(sheet, tab string) string {
	tab = strings.TrimSpace(tab)
	if !isDayNumber(tab) {
		return ticket.FormatDate(tab)
	}

	if m := sheetMonthPattern.FindStringSubmatch(sheet); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(tab)
		if month >= 1 && month <= 12 {
			return ticket.FormatDate(fmt.Sprintf("%02d/%02d/20%s", month, day, m[2]))
		}
	}

	year := "2025"
	if strings.Contains(sheet, "2026") {
		year = "2026"
	}
	return ticket.FormatDate(tab + "/" + year)
}

func isDayNumber(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseTicketTab converts one tab into tickets. ok is false when no ticket
// header was found, in which case the tab is not a ticket tab.
func ParseTicketTab(sheet, tab string, rows [][]string) ([]ticket.Ticket, bool) {
	headerIdx := FindTicketHeader(rows, TicketHeaderScanRows)
	if headerIdx < 0 {
		return nil, false
	}

	isTotal := IsTotalReport(sheet)
	headers := UniqueHeaders(rows[headerIdx])
	columns := make(map[string]int)
	extras := make(map[string]int)
	for i, h := range headers {
		canonical, ok := CanonicalColumn(h, isTotal)
		if !ok && ticket.IsCanonical(h) {
			canonical, ok = h, true
		}
		if ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
				continue
			}
			// the first column wins, later ones stay as extras
		}
		if h != "" {
			extras[h] = i
		}
	}

	if _, ok := columns[ticket.ColSalonName]; !ok {
		return nil, true
	}

	tabDate := ""
	if _, ok := columns[ticket.ColDate]; !ok {
		tabDate = TabDate(sheet, tab)
	}

	var tickets []ticket.Ticket
	for offset, row := range rows[headerIdx+1:] {
		salon := ticket.CleanScalar(cell(row, columns[ticket.ColSalonName]))
		if strings.TrimSpace(salon) == "" {
			continue
		}

		t := ticket.Ticket{
			Source: ticket.SourceSheet,
			Origin: &ticket.Origin{
				Sheet:   sheet,
				Tab:     tab,
				Row:     headerIdx + 2 + offset,
				Columns: columns,
			},
		}
		for name, i := range columns {
			t.SetField(name, ticket.CleanScalar(cell(row, i)))
		}
		for name, i := range extras {
			if t.Extra == nil {
				t.Extra = make(map[string]string, len(extras))
			}
			t.Extra[name] = ticket.CleanScalar(cell(row, i))
		}

		if tabDate != "" {
			t.Date = tabDate
		} else {
			t.Date = ticket.FormatDate(t.Date)
		}
		if _, ok := columns[ticket.ColIssueCategory]; !ok {
			t.IssueCategory = t.Note
		}
		tickets = append(tickets, t)
	}
	return tickets, true
}
