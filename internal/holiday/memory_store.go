package holiday

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/username/holiday-assistant/pkg/dateutil"
	"go.uber.org/zap"
)

// MemoryStore implements Store over an in-memory table.
// The table is kept sorted so range lookups are binary searches.
type MemoryStore struct {
	mu       sync.RWMutex
	holidays []Holiday
	logger   *zap.Logger
}

// NewMemoryStore creates a MemoryStore seeded with holidays
func NewMemoryStore(holidays []Holiday, logger *zap.Logger) *MemoryStore {
	ms := &MemoryStore{logger: logger}
	ms.Replace(holidays)
	return ms
}

// Replace swaps the whole table
func (ms *MemoryStore) Replace(holidays []Holiday) {
	table := make([]Holiday, len(holidays))
	for i, h := range holidays {
		h.Date = dateutil.CalendarDate(h.Date)
		table[i] = h
	}
	SortByDate(table)

	ms.mu.Lock()
	ms.holidays = table
	ms.mu.Unlock()

	ms.logger.Info("Holiday table loaded", zap.Int("holidays", len(table)))
}

// Len returns the number of stored holidays
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.holidays)
}

// HolidaysInMonth returns the holidays of a month
func (ms *MemoryStore) HolidaysInMonth(_ context.Context, year int, month time.Month) ([]Holiday, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return ms.between(from, from.AddDate(0, 1, 0)), nil
}

// HolidaysInYear returns the holidays of a year
func (ms *MemoryStore) HolidaysInYear(_ context.Context, year int) ([]Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return ms.between(from, from.AddDate(1, 0, 0)), nil
}

// HolidayForDate returns the first holiday stored for date
func (ms *MemoryStore) HolidayForDate(_ context.Context, date time.Time) (*Holiday, error) {
	day := dateutil.CalendarDate(date)
	matches := ms.between(day, day.AddDate(0, 0, 1))
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// between returns a copy of holidays with from <= date < to
func (ms *MemoryStore) between(from, to time.Time) []Holiday {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	start := sort.Search(len(ms.holidays), func(i int) bool {
		return !ms.holidays[i].Date.Before(from)
	})
	end := sort.Search(len(ms.holidays), func(i int) bool {
		return !ms.holidays[i].Date.Before(to)
	})

	out := make([]Holiday, end-start)
	copy(out, ms.holidays[start:end])
	return out
}
