package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"caltext/internal/models"
)

var _ EntryStore = (*SQLiteStore)(nil)

// SQLiteStore is the local storage backend, used when running without a
// Google spreadsheet. Same column semantics as the sheet; RowRefs are row
// ids. Position within a day is insertion order.
type SQLiteStore struct {
	db     *sql.DB
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

func NewSQLiteStore(db *sql.DB, loc *time.Location, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SQLiteStore) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

func (s *SQLiteStore) ListToday(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, entry_date, entry_time, description, items, calories, daily_total
        FROM entries
        WHERE entry_date = ?
        ORDER BY logged_at, rowid`, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to query today's entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e     models.Entry
			id    string
			items string
		)
		if err := rows.Scan(&id, &e.Date, &e.Time, &e.Description, &items, &e.Calories, &e.DailyTotal); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Ref = models.RowRef(id)
		e.Items = models.ParseItems(items)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry models.Entry) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO entries (id, entry_date, entry_time, description, items, calories, daily_total, logged_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		entry.Date,
		entry.Time,
		entry.Description,
		models.FormatItems(entry.Items),
		entry.Calories,
		entry.DailyTotal,
		s.now().In(s.loc).Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateAt(ctx context.Context, ref models.RowRef, entry models.Entry) error {
	// Date, time and logged_at stay as originally written.
	res, err := s.db.ExecContext(ctx, `
        UPDATE entries SET description = ?, items = ?, calories = ?
        WHERE id = ?`,
		entry.Description,
		models.FormatItems(entry.Items),
		entry.Calories,
		string(ref),
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return requireOneRow(res, ref)
}

func (s *SQLiteStore) DeleteAt(ctx context.Context, ref models.RowRef) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, string(ref))
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireOneRow(res, ref)
}

func (s *SQLiteStore) RecomputeDailyTotals(ctx context.Context) (int, error) {
	entries, err := s.ListToday(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	totals := runningTotals(entries)
	for i, e := range entries {
		if _, err := s.db.ExecContext(ctx, `UPDATE entries SET daily_total = ? WHERE id = ?`,
			totals[i], string(e.Ref)); err != nil {
			return 0, fmt.Errorf("failed to rewrite daily total: %w", err)
		}
	}
	return totals[len(totals)-1], nil
}

func requireOneRow(res sql.Result, ref models.RowRef) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no entry row for ref %q", ref)
	}
	return nil
}
