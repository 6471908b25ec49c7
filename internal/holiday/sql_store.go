package holiday

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/username/holiday-assistant/pkg/dateutil"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS holidays (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	is_public BOOLEAN NOT NULL DEFAULT 1,
	UNIQUE (date, name)
);
CREATE INDEX IF NOT EXISTS idx_date ON holidays(date);
`

// SQLStore implements Store on top of a SQLite database
type SQLStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLStore opens (or creates) the SQLite database at path
func OpenSQLStore(path string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holiday database: %w", err)
	}

	return &SQLStore{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

// Init creates the holidays table and its indexes
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create holiday schema: %w", err)
	}
	s.logger.Debug("Holiday schema ready", zap.String("path", s.path))
	return nil
}

// Seed inserts holidays, skipping (date, name) pairs already present.
// It returns the number of rows actually inserted.
func (s *SQLStore) Seed(ctx context.Context, holidays []Holiday) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := insertHolidays(ctx, tx, holidays)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	s.logger.Info("Holiday database seeded",
		zap.String("path", s.path),
		zap.Int("offered", len(holidays)),
		zap.Int("inserted", inserted))

	return inserted, nil
}

// Sync makes the table hold exactly holidays: rows whose (date, name) is
// not offered are deleted and new pairs are inserted, in one transaction.
// Rows kept across a sync keep their ids, so first-stored order is stable.
func (s *SQLStore) Sync(ctx context.Context, holidays []Holiday) (inserted, deleted int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin sync transaction: %w", err)
	}
	defer tx.Rollback()

	wanted := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		wanted[rowKey(h.Date.Format(dateutil.ISODate), h.Name)] = struct{}{}
	}

	stale, err := staleRows(ctx, tx, wanted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to scan holidays for sync: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id); err != nil {
			return 0, 0, fmt.Errorf("failed to delete stale holiday %d: %w", id, err)
		}
	}

	inserted, err = insertHolidays(ctx, tx, holidays)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit sync transaction: %w", err)
	}

	s.logger.Info("Holiday database synced",
		zap.String("path", s.path),
		zap.Int("offered", len(holidays)),
		zap.Int("inserted", inserted),
		zap.Int("deleted", len(stale)))

	return inserted, len(stale), nil
}

func insertHolidays(ctx context.Context, tx *sql.Tx, holidays []Holiday) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO holidays (date, name, description) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare seed statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, h := range holidays {
		res, err := stmt.ExecContext(ctx, h.Date.Format(dateutil.ISODate), h.Name, h.Description)
		if err != nil {
			return 0, fmt.Errorf("failed to insert holiday %s %q: %w",
				h.Date.Format(dateutil.ISODate), h.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

func staleRows(ctx context.Context, tx *sql.Tx, wanted map[string]struct{}) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, date, name FROM holidays`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []int64
	for rows.Next() {
		var (
			id         int64
			date, name string
		)
		if err := rows.Scan(&id, &date, &name); err != nil {
			return nil, err
		}
		if _, ok := wanted[rowKey(date, name)]; !ok {
			stale = append(stale, id)
		}
	}
	return stale, rows.Err()
}

func rowKey(date, name string) string {
	return date + "\x00" + name
}

// HolidaysInMonth returns the holidays of a month
func (s *SQLStore) HolidaysInMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	holidays, err := s.queryRange(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays for %d-%02d: %w", year, month, err)
	}
	return holidays, nil
}

// HolidaysInYear returns the holidays of a year
func (s *SQLStore) HolidaysInYear(ctx context.Context, year int) ([]Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	holidays, err := s.queryRange(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays for %d: %w", year, err)
	}
	return holidays, nil
}

// HolidayForDate returns the first holiday stored for date
func (s *SQLStore) HolidayForDate(ctx context.Context, date time.Time) (*Holiday, error) {
	key := date.Format(dateutil.ISODate)

	var h Holiday
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description FROM holidays WHERE date = ? ORDER BY id LIMIT 1`, key).
		Scan(&h.Name, &h.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query holiday for %s: %w", key, err)
	}

	h.Date = dateutil.CalendarDate(date)
	return &h, nil
}

// Close closes the underlying database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) queryRange(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name, description
		FROM holidays
		WHERE date >= ? AND date < ?
		ORDER BY date, id`,
		from.Format(dateutil.ISODate), to.Format(dateutil.ISODate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []Holiday{}
	for rows.Next() {
		var (
			dateStr string
			h       Holiday
		)
		if err := rows.Scan(&dateStr, &h.Name, &h.Description); err != nil {
			return nil, err
		}
		h.Date, err = dateutil.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt date in holidays table: %w", err)
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}
