package holiday

import (
	"context"
	"sort"
	"time"
)

// Holiday is a single entry of the holiday calendar
type Holiday struct {
	Date        time.Time // calendar date, UTC midnight
	Name        string
	Description string
}

// Store is the read side of the holiday calendar
type Store interface {
	// HolidaysInMonth returns the holidays of a month, ascending by date
	HolidaysInMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error)

	// HolidaysInYear returns the holidays of a year, ascending by date
	HolidaysInYear(ctx context.Context, year int) ([]Holiday, error)

	// HolidayForDate returns the holiday on date, or nil if the date is not a holiday
	HolidayForDate(ctx context.Context, date time.Time) (*Holiday, error)
}

// SortByDate orders holidays ascending by date, keeping insertion order for ties
func SortByDate(holidays []Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
}
