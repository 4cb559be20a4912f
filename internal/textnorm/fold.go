// Package textnorm folds Vietnamese and accented text for case- and
// diacritic-insensitive matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var dReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// Fold lowercases s and strips combining marks, so "Nguyễn" matches "nguyen"
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, dReplacer.Replace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Contains reports whether needle occurs in haystack after folding both
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Matcher folds a search term once and tests many values against it
type Matcher struct {
	term string
}

// NewMatcher prepares a folded, trimmed search term
func NewMatcher(term string) Matcher {
	return Matcher{term: Fold(strings.TrimSpace(term))}
}

// Empty reports whether the term is blank
func (m Matcher) Empty() bool {
	return m.term == ""
}

// Match reports whether any value contains the term
func (m Matcher) Match(values ...string) bool {
	for _, v := range values {
		if strings.Contains(Fold(v), m.term) {
			return true
		}
	}
	return false
}
