package reference

import "strings"

// CleanIdentifier normalizes a CID or phone read from a spreadsheet cell:
// trims, drops a float suffix ".0", and blanks nan/None placeholders.
func CleanIdentifier(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	switch strings.ToLower(s) {
	case "nan", "none", "nat":
		return ""
	}
	return s
}
