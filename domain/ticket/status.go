package ticket

import "strings"

// Status is the workflow state of a ticket
type Status string

const (
	StatusPending  Status = "Pending"
	StatusDone     Status = "Done"
	StatusNoAnswer Status = "No Answer"
)

// Statuses returns the statuses in the order the forms offer them
func Statuses() []Status {
	return []Status{StatusPending, StatusDone, StatusNoAnswer}
}

// NormalizeStatus maps free text from a sheet onto a known status. Unknown values become Pending.
func NormalizeStatus(s string) Status {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusPending
	}
	capitalized := strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	for _, st := range Statuses() {
		if strings.EqualFold(capitalized, string(st)) {
			return st
		}
	}
	return StatusPending
}
