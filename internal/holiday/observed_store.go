package holiday

import (
	"context"
	"time"
)

// Lookup operations and results reported to a LookupObserver
const (
	OpYear  = "year"
	OpMonth = "month"
	OpDate  = "date"

	ResultFound = "found"
	ResultEmpty = "empty"
	ResultError = "error"
)

// LookupObserver receives one call per store lookup
type LookupObserver interface {
	ObserveLookup(op, result string, took time.Duration)
}

// ObservedStore reports every lookup of the wrapped Store to an observer
type ObservedStore struct {
	next     Store
	observer LookupObserver
	now      func() time.Time
}

// NewObservedStore wraps next so its lookups are reported to observer
func NewObservedStore(next Store, observer LookupObserver) *ObservedStore {
	return &ObservedStore{
		next:     next,
		observer: observer,
		now:      time.Now,
	}
}

// HolidaysInMonth returns the holidays of a month
func (o *ObservedStore) HolidaysInMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error) {
	start := o.now()
	holidays, err := o.next.HolidaysInMonth(ctx, year, month)
	o.observer.ObserveLookup(OpMonth, lookupResult(len(holidays) > 0, err), o.now().Sub(start))
	return holidays, err
}

// HolidaysInYear returns the holidays of a year
func (o *ObservedStore) HolidaysInYear(ctx context.Context, year int) ([]Holiday, error) {
	start := o.now()
	holidays, err := o.next.HolidaysInYear(ctx, year)
	o.observer.ObserveLookup(OpYear, lookupResult(len(holidays) > 0, err), o.now().Sub(start))
	return holidays, err
}

// HolidayForDate returns the holiday on date
func (o *ObservedStore) HolidayForDate(ctx context.Context, date time.Time) (*Holiday, error) {
	start := o.now()
	h, err := o.next.HolidayForDate(ctx, date)
	o.observer.ObserveLookup(OpDate, lookupResult(h != nil, err), o.now().Sub(start))
	return h, err
}

func lookupResult(found bool, err error) string {
	switch {
	case err != nil:
		return ResultError
	case found:
		return ResultFound
	default:
		return ResultEmpty
	}
}
