// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var spacePattern = regexp.MustCompile(`\s+`)

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Unaccent transliterates s to ASCII and lowercases it.
//
// Example:
//
//	Unaccent("Càng Đảo") returns "cang dao"
//	Unaccent("HÔM NAY") returns "hom nay"
func Unaccent(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}

// NormalizeKeyword prepares free text for keyword comparison: transliterated,
// lowercased, trimmed, with internal whitespace collapsed to single spaces.
func NormalizeKeyword(s string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(Unaccent(s)), " ")
}

// HasAnyPrefix reports whether s starts with one of prefixes.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// CutFirstLine splits text at the first line break.
// The body is empty when text holds a single line.
func CutFirstLine(text string) (head, body string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	head, body, _ = strings.Cut(text, "\n")
	return strings.TrimSpace(head), strings.TrimSpace(body)
}
