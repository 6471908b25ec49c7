package holiday

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/username/holiday-assistant/pkg/dateutil"
	"go.uber.org/zap"
)

const defaultCacheTTL = 10 * time.Minute

// CachedStore is a read-through TTL cache in front of another Store.
// Date lookups are answered from the cached month.
type CachedStore struct {
	next     Store
	logger   *zap.Logger
	cache    map[string]*cachedHolidays
	cacheMu  sync.RWMutex
	cacheTTL time.Duration
	now      func() time.Time
}

type cachedHolidays struct {
	data      []Holiday
	fetchedAt time.Time
}

// NewCachedStore wraps next with a cache whose entries live for cacheTTL
func NewCachedStore(next Store, cacheTTL time.Duration, logger *zap.Logger) *CachedStore {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &CachedStore{
		next:     next,
		logger:   logger,
		cache:    make(map[string]*cachedHolidays),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// HolidaysInMonth returns the holidays of a month
func (c *CachedStore) HolidaysInMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error) {
	key := fmt.Sprintf("%d-%02d", year, month)
	return c.load(key, func() ([]Holiday, error) {
		return c.next.HolidaysInMonth(ctx, year, month)
	})
}

// HolidaysInYear returns the holidays of a year
func (c *CachedStore) HolidaysInYear(ctx context.Context, year int) ([]Holiday, error) {
	key := fmt.Sprintf("%d", year)
	return c.load(key, func() ([]Holiday, error) {
		return c.next.HolidaysInYear(ctx, year)
	})
}

// HolidayForDate returns the first holiday of the cached month falling on date
func (c *CachedStore) HolidayForDate(ctx context.Context, date time.Time) (*Holiday, error) {
	month, err := c.HolidaysInMonth(ctx, date.Year(), date.Month())
	if err != nil {
		return nil, err
	}

	for i := range month {
		if dateutil.IsSameDay(month[i].Date, date) {
			h := month[i]
			return &h, nil
		}
	}
	return nil, nil
}

// ClearCache clears the cache
func (c *CachedStore) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[string]*cachedHolidays)
	c.logger.Info("Holiday cache cleared")
}

func (c *CachedStore) load(key string, fetch func() ([]Holiday, error)) ([]Holiday, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[key]; ok {
		if c.now().Sub(cached.fetchedAt) < c.cacheTTL {
			c.cacheMu.RUnlock()
			c.logger.Debug("Using cached holidays", zap.String("key", key))
			return cloneHolidays(cached.data), nil
		}
	}
	c.cacheMu.RUnlock()

	holidays, err := fetch()
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache[key] = &cachedHolidays{
		data:      cloneHolidays(holidays),
		fetchedAt: c.now(),
	}
	c.cacheMu.Unlock()

	return holidays, nil
}

func cloneHolidays(holidays []Holiday) []Holiday {
	out := make([]Holiday, len(holidays))
	copy(out, holidays)
	return out
}
