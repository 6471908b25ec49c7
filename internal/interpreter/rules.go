package interpreter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/holiday-assistant/pkg/dateutil"
)

// rule is one entry of the classification cascade. match decides the
// structural question (does the text have this shape); normalize turns the
// captures into an Intent, which may be a terminal parse failure.
type rule struct {
	name      string
	match     func(text string) (rawMatch, bool)
	normalize func(raw rawMatch, now time.Time) Intent
}

var (
	yearOnlyRe  = regexp.MustCompile(`\bholidays\s+in\s+(\d{2,4})\b(?:\s+([a-z]+|\d+)\b)?`)
	monthYearRe = regexp.MustCompile(`\bholidays\s+in\s+([a-z]+|\d{1,2})\s+(\d{2,4})\b`)
	yearMonthRe = regexp.MustCompile(`\bholidays\s+in\s+(\d{2,4})\s+([a-z]+|\d{1,2})\b`)
	monthOnlyRe = regexp.MustCompile(`\bholidays\s+in\s+([a-z]+|\d{1,2})\b`)

	monthDayRe   = regexp.MustCompile(`(?:\bis\s+)?\b([a-z]+|\d{1,2})\s+(\d{1,2})\b(?:\s+(\d{2,4}))?(?:\s+a)?\s+holiday\b`)
	dayMonthRe   = regexp.MustCompile(`(?:\bis\s+)?\b(\d{1,2})\s+([a-z]+|\d{1,2})(?:\s+(\d{2,4}))?(?:\s+a)?\s+holiday\b`)
	numericDayRe = regexp.MustCompile(`(?:\bis\s+)?\b(\d{1,2})([-/])(\d{1,2})([-/])(\d{2,4})(?:\s+a)?\s+holiday\b`)
)

// rules is evaluated top to bottom; the first structural match wins.
// "holidays in 2024" must be tried before the month rules because the
// month+year and month-only shapes are prefixes of each other.
var rules = []rule{
	{name: "year", match: matchYearOnly, normalize: normalizeYear},
	{name: "month_year", match: matchMonthYear, normalize: normalizeMonth},
	{name: "month", match: matchMonthOnly, normalize: normalizeMonth},
	{name: "date_month_day", match: matchMonthDay, normalize: normalizeDate},
	{name: "date_day_month", match: matchDayMonth, normalize: normalizeDate},
	{name: "date_numeric", match: matchNumericDate, normalize: normalizeDate},
}

// fillers can land in a month slot ("is 26 a holiday") but never name a month
var fillers = map[string]struct{}{"a": {}, "an": {}, "is": {}}

var punctuation = strings.NewReplacer("?", " ", "!", " ", ",", " ", ".", " ", ";", " ", ":", " ")

// normalizeText lower-cases the question, drops sentence punctuation and
// collapses whitespace. Dashes and slashes survive for numeric dates.
func normalizeText(question string) string {
	return strings.Join(strings.Fields(punctuation.Replace(strings.ToLower(question))), " ")
}

// Parse classifies question. now supplies the year for questions that omit one.
func Parse(question string, now time.Time) Intent {
	intent, _ := classify(question, now)
	return intent
}

func classify(question string, now time.Time) (Intent, string) {
	text := normalizeText(question)
	for _, r := range rules {
		raw, ok := r.match(text)
		if !ok {
			continue
		}
		return r.normalize(raw, now), r.name
	}
	return Intent{Kind: KindNoMatch}, "none"
}

func matchYearOnly(text string) (rawMatch, bool) {
	m := yearOnlyRe.FindStringSubmatch(text)
	if m == nil {
		return rawMatch{}, false
	}
	// "holidays in 2024 jan" and "holidays in 12 2024" belong to the month rules
	if next := m[2]; next != "" {
		if isMonthShaped(next) || (len(m[1]) <= 2 && isDigits(next)) {
			return rawMatch{}, false
		}
	}
	return rawMatch{year: m[1]}, true
}

// matchMonthYear accepts both token orders. Month-first is tried first, so
// with two short numerals the second is the year; a 4-digit token can only
// fit a year slot, which settles "2024 12" versus "12 2024".
func matchMonthYear(text string) (rawMatch, bool) {
	if m := monthYearRe.FindStringSubmatch(text); m != nil {
		return rawMatch{month: m[1], year: m[2]}, true
	}
	if m := yearMonthRe.FindStringSubmatch(text); m != nil {
		return rawMatch{month: m[2], year: m[1]}, true
	}
	return rawMatch{}, false
}

func matchMonthOnly(text string) (rawMatch, bool) {
	m := monthOnlyRe.FindStringSubmatch(text)
	if m == nil {
		return rawMatch{}, false
	}
	return rawMatch{month: m[1]}, true
}

func matchMonthDay(text string) (rawMatch, bool) {
	idx := monthDayRe.FindStringSubmatchIndex(text)
	if idx == nil {
		return rawMatch{}, false
	}
	// in "26 jan 25 holiday" the month token is preceded by the day
	if before := strings.Fields(text[:idx[2]]); len(before) > 0 && isDigits(before[len(before)-1]) {
		return rawMatch{}, false
	}
	group := func(n int) string {
		if idx[2*n] < 0 {
			return ""
		}
		return text[idx[2*n]:idx[2*n+1]]
	}
	if _, filler := fillers[group(1)]; filler {
		return rawMatch{}, false
	}
	return rawMatch{month: group(1), day: group(2), year: group(3)}, true
}

func matchDayMonth(text string) (rawMatch, bool) {
	m := dayMonthRe.FindStringSubmatch(text)
	if m == nil {
		return rawMatch{}, false
	}
	if _, filler := fillers[m[2]]; filler {
		return rawMatch{}, false
	}
	return rawMatch{day: m[1], month: m[2], year: m[3]}, true
}

func matchNumericDate(text string) (rawMatch, bool) {
	m := numericDayRe.FindStringSubmatch(text)
	if m == nil {
		return rawMatch{}, false
	}
	// both separators must agree: 26-01-2025 or 26/01/2025
	if m[2] != m[4] {
		return rawMatch{}, false
	}
	return rawMatch{day: m[1], month: m[3], year: m[5]}, true
}

func normalizeYear(raw rawMatch, _ time.Time) Intent {
	year, err := dateutil.ExpandYear(raw.year)
	if err != nil {
		return failure(FailureYear)
	}
	return Intent{Kind: KindYear, Year: year}
}

func normalizeMonth(raw rawMatch, now time.Time) Intent {
	month, ok := lookupMonth(raw.month)
	if !ok {
		return failure(FailureMonth)
	}

	year, ok := resolveYear(raw.year, now)
	if !ok {
		return failure(FailureYear)
	}

	return Intent{
		Kind:       KindMonth,
		Year:       year,
		Month:      month,
		MonthLabel: capitalize(raw.month),
	}
}

func normalizeDate(raw rawMatch, now time.Time) Intent {
	month, ok := lookupMonth(raw.month)
	if !ok {
		return failure(FailureDate)
	}

	day, err := strconv.Atoi(raw.day)
	if err != nil {
		return failure(FailureDate)
	}

	year, ok := resolveYear(raw.year, now)
	if !ok {
		return failure(FailureDate)
	}

	date, ok := dateutil.Date(year, int(month), day)
	if !ok {
		return failure(FailureDate)
	}

	return Intent{Kind: KindDate, Year: date.Year(), Month: date.Month(), Day: date.Day()}
}

// resolveYear expands a captured year token, defaulting to now's year when absent
func resolveYear(token string, now time.Time) (int, bool) {
	if token == "" {
		return now.Year(), true
	}
	year, err := dateutil.ExpandYear(token)
	if err != nil {
		return 0, false
	}
	return year, true
}

func failure(f Failure) Intent {
	return Intent{Kind: KindParseFailure, Failure: f}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
