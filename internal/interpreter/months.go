package interpreter

import (
	"strconv"
	"time"
)

var monthAbbreviations = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// lookupMonth resolves a lower-case month token.
// Numerals must be 1-12; words match on their first three letters.
func lookupMonth(token string) (time.Month, bool) {
	if isDigits(token) {
		n, err := strconv.Atoi(token)
		if err != nil || n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}

	if len(token) < 3 {
		return 0, false
	}
	m, ok := monthAbbreviations[token[:3]]
	return m, ok
}

// isMonthShaped reports whether token sits naturally in a month slot:
// a 1-2 digit numeral or a word that resolves to a month
func isMonthShaped(token string) bool {
	if isDigits(token) {
		return len(token) <= 2
	}
	_, ok := lookupMonth(token)
	return ok
}

func isDigits(s string) bool {
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
