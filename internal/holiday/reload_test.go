package holiday

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReloader_Reload(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "holidays.txt")
	require.NoError(t, os.WriteFile(seed, []byte("2025-01-26 public Republic Day\n"), 0o644))

	memory := NewMemoryStore(nil, logger)
	db := openTestDB(t)
	cache := NewCachedStore(NewCompositeStore(db, memory, logger), time.Hour, logger)

	// prime the cache with the empty calendar
	h, err := cache.HolidayForDate(ctx, day(2025, time.January, 26))
	require.NoError(t, err)
	require.Nil(t, h)

	r := NewReloader(seed, memory, db, cache, logger)
	n, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, memory.Len())

	h, err = cache.HolidayForDate(ctx, day(2025, time.January, 26))
	require.NoError(t, err)
	require.NotNil(t, h, "reload should drop stale cache entries")
	assert.Equal(t, "Republic Day", h.Name)

	require.NoError(t, os.WriteFile(seed, []byte("2025-01-26 public Republic Day\n2025-08-15 public Independence Day\n"), 0o644))
	n, err = r.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	inYear, err := db.HolidaysInYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, []string{"Republic Day", "Independence Day"}, names(inYear))
}

func TestReloader_DropsRemovedHolidays(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "holidays.txt")
	require.NoError(t, os.WriteFile(seed, []byte(
		"2025-01-26 public Republic Day\n2025-08-15 public Independence Day\n2025-10-02 public Gandhi Jayanti\n"), 0o644))

	memory := NewMemoryStore(nil, logger)
	db := openTestDB(t)
	r := NewReloader(seed, memory, db, nil, logger)

	_, err := r.Reload(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(seed, []byte(
		"2025-01-26 public Republic Day\n2025-10-02 public Gandhi Jayanti\n"), 0o644))
	n, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	h, err := db.HolidayForDate(ctx, day(2025, time.August, 15))
	require.NoError(t, err)
	assert.Nil(t, h, "a holiday removed from the seed must leave the database")

	inYear, err := db.HolidaysInYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, []string{"Republic Day", "Gandhi Jayanti"}, names(inYear))
}

func TestReloader_BuiltInCalendar(t *testing.T) {
	logger := zaptest.NewLogger(t)
	memory := NewMemoryStore(nil, logger)

	n, err := NewReloader("", memory, nil, nil, logger).Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Equal(t, 50, memory.Len())
}

func TestReloader_MissingFileKeepsTable(t *testing.T) {
	logger := zaptest.NewLogger(t)
	memory := NewMemoryStore(fixture(), logger)

	_, err := NewReloader(filepath.Join(t.TempDir(), "gone.txt"), memory, nil, nil, logger).Reload(context.Background())
	assert.Error(t, err)
	assert.Equal(t, len(fixture()), memory.Len())
}
