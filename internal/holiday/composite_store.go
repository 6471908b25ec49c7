package holiday

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CompositeStore implements Store with fallback strategy
// Primary: SQLStore (database)
// Fallback: MemoryStore (seed file)
type CompositeStore struct {
	primary  Store
	fallback Store
	logger   *zap.Logger
}

// NewCompositeStore creates a new CompositeStore
func NewCompositeStore(primary, fallback Store, logger *zap.Logger) *CompositeStore {
	return &CompositeStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// HolidaysInMonth returns the holidays of a month
func (cs *CompositeStore) HolidaysInMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error) {
	holidays, err := cs.primary.HolidaysInMonth(ctx, year, month)
	if err == nil {
		return holidays, nil
	}

	cs.logger.Warn("Primary store failed, falling back",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Error(err))

	holidays, fallbackErr := cs.fallback.HolidaysInMonth(ctx, year, month)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return holidays, nil
}

// HolidaysInYear returns the holidays of a year
func (cs *CompositeStore) HolidaysInYear(ctx context.Context, year int) ([]Holiday, error) {
	holidays, err := cs.primary.HolidaysInYear(ctx, year)
	if err == nil {
		return holidays, nil
	}

	cs.logger.Warn("Primary store failed, falling back",
		zap.Int("year", year),
		zap.Error(err))

	holidays, fallbackErr := cs.fallback.HolidaysInYear(ctx, year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return holidays, nil
}

// HolidayForDate returns the holiday on date
func (cs *CompositeStore) HolidayForDate(ctx context.Context, date time.Time) (*Holiday, error) {
	h, err := cs.primary.HolidayForDate(ctx, date)
	if err == nil {
		return h, nil
	}

	cs.logger.Warn("Primary store failed, falling back",
		zap.Time("date", date),
		zap.Error(err))

	h, fallbackErr := cs.fallback.HolidayForDate(ctx, date)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return h, nil
}
