package ticket

import (
	"strings"
	"time"
)

// DisplayLayout is the US date format every ticket date is shown in
const DisplayLayout = "01/02/2006"

// CreatedAtLayout is the timestamp format of Created_At
const CreatedAtLayout = "2006-01-02 15:04:05"

var monthFirstLayouts = []string{
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"1/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var isoLayouts = []string{
	CreatedAtLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
}

var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/06",
	"2-1-2006",
	"2.1.2006",
}

// ParseDate reads a date the way report sheets write them: ISO forms first,
// then month-first, then day-first.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, group := range [][]string{isoLayouts, monthFirstLayouts, dayFirstLayouts} {
		for _, layout := range group {
			if ts, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// FormatDate renders v as MM/DD/YYYY when it parses, otherwise returns it trimmed
func FormatDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if ts, ok := ParseDate(v); ok {
		return ts.Format(DisplayLayout)
	}
	return v
}

// CleanScalar blanks the placeholder strings spreadsheet exports leave in empty cells
func CleanScalar(s string) string {
	switch strings.TrimSpace(s) {
	case "nan", "NaN", "None", "NaT":
		return ""
	}
	return s
}
