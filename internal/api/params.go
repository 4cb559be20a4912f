package api

import (
	"net/url"
	"strings"
	"time"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"
)

// DateLayout is the format of from/to query parameters
const DateLayout = "2006-01-02"

// SheetsFrom returns the selected sheets of a query, falling back to defaults.
// Repeated "sheet" keys and comma separated values are both accepted.
func SheetsFrom(q url.Values, defaults []string) []string {
	var sheets []string
	for _, v := range q["sheet"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sheets = append(sheets, name)
			}
		}
	}
	if len(sheets) == 0 {
		return defaults
	}
	return sheets
}

// FilterFrom parses the dashboard filter parameters
func FilterFrom(q url.Values) (ticket.Filter, error) {
	filter := ticket.Filter{
		Keyword: strings.TrimSpace(q.Get("q")),
		Agent:   q.Get("agent"),
		Status:  q.Get("status"),
	}
	var err error
	if filter.From, err = parseDay(q.Get("from"), "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseDay(q.Get("to"), "to"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, errors.InvalidInput("to must not be before from")
	}
	return filter, nil
}

func parseDay(v, name string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(DateLayout, v, time.Local)
	if err != nil {
		return nil, errors.InvalidInput(name + " must be a YYYY-MM-DD date")
	}
	return &day, nil
}
