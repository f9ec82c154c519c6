package utils

import (
	"strings"
	"unicode"
)

// HumanizeKey turns a snake_case wire key into a display label: underscores
// become spaces and the first letter is upper-cased.
//
// Examples:
//   - "flight_location" -> "Flight location"
//   - "id" -> "Id"
//   - "Already Nice" -> "Already Nice" (unchanged)
func HumanizeKey(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(strings.ReplaceAll(s, "_", " "))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// SplitAndTrim splits a comma separated list and trims every element. Empty
// elements are dropped.
//
// Examples:
//   - "admin, pilot" -> ["admin", "pilot"]
//   - "admin,,"      -> ["admin"]
func SplitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
