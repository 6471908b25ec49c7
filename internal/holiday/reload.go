package holiday

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Reloader re-reads the seed calendar into the running stores.
// sql and cache are optional.
type Reloader struct {
	seedFile string
	memory   *MemoryStore
	sql      *SQLStore
	cache    *CachedStore
	logger   *zap.Logger
}

// NewReloader creates a Reloader. An empty seedFile selects the built-in calendar.
func NewReloader(seedFile string, memory *MemoryStore, sql *SQLStore, cache *CachedStore, logger *zap.Logger) *Reloader {
	return &Reloader{
		seedFile: seedFile,
		memory:   memory,
		sql:      sql,
		cache:    cache,
		logger:   logger,
	}
}

// Load reads the seed calendar without touching any store
func (r *Reloader) Load() ([]Holiday, error) {
	if r.seedFile == "" {
		return Sample(r.logger), nil
	}
	return LoadFile(r.seedFile, r.logger)
}

// Reload swaps the memory table, syncs the database to the seed calendar
// (rows missing from the seed are deleted) and drops cached lookups.
// It returns the number of holidays loaded.
func (r *Reloader) Reload(ctx context.Context) (int, error) {
	holidays, err := r.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load seed calendar: %w", err)
	}

	if r.memory != nil {
		r.memory.Replace(holidays)
	}

	if r.sql != nil {
		inserted, deleted, err := r.sql.Sync(ctx, holidays)
		if err != nil {
			return 0, fmt.Errorf("failed to sync database: %w", err)
		}
		r.logger.Info("Database synced",
			zap.Int("inserted", inserted),
			zap.Int("deleted", deleted))
	}

	if r.cache != nil {
		r.cache.ClearCache()
	}

	return len(holidays), nil
}
