package dateutil

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// ISODate is the storage layout for calendar dates
	ISODate = "2006-01-02"
	// LongDate renders dates as "January 02, 2006"
	LongDate = "January 02, 2006"
	// DayMonth renders dates as "02 January"
	DayMonth = "02 January"
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// CalendarDate returns the date as UTC midnight, dropping clock and zone
func CalendarDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar date and reports whether the fields form a real date.
// time.Date would silently normalize overflow (Feb 31 -> Mar 3).
func Date(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExpandYear converts a 2-4 digit year token to a full year.
// Two-digit years always land in the 2000s ("45" -> 2045).
func ExpandYear(token string) (int, error) {
	if len(token) < 2 || len(token) > 4 {
		return 0, fmt.Errorf("year must have 2 to 4 digits: %q", token)
	}
	year, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", token, err)
	}
	if len(token) == 2 {
		year += 2000
	}
	return year, nil
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// FormatLong formats date as "January 02, 2006"
func FormatLong(date time.Time) string {
	return date.Format(LongDate)
}

// FormatDayMonth formats date as "02 January"
func FormatDayMonth(date time.Time) string {
	return date.Format(DayMonth)
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		ISODate,
		"02.01.2006",
		"20060102",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return CalendarDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}
