package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const defaultRetries = 5

// Schema for the local SQLite backend. Mirrors the spreadsheet's column
// semantics: one row per entry, daily_total holds the running total as of
// that row and is rewritten after every mutation.
const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id          TEXT PRIMARY KEY,
    entry_date  TEXT NOT NULL,
    entry_time  TEXT NOT NULL,
    description TEXT NOT NULL,
    items       TEXT NOT NULL,
    calories    INTEGER NOT NULL,
    daily_total INTEGER NOT NULL,
    logged_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date);
`

// Init opens (creating if necessary) the SQLite database used when the
// sqlite storage backend is selected, and applies the schema.
func Init(path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite database ready", slog.String("path", path))
	return db, nil
}

// WaitForDB waits for the database to answer pings, with a short backoff.
func WaitForDB(ctx context.Context, db *sql.DB, logger *slog.Logger) bool {
	maxAttempts := defaultRetries
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := db.PingContext(ctx)
		if err == nil {
			logger.InfoContext(ctx, "Database connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.WarnContext(ctx, "Database ping failed, retrying...",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("wait_duration", waitDuration),
			slog.String("error", err.Error()),
		)
		if attempts < maxAttempts {
			time.Sleep(waitDuration)
		}
	}
	logger.ErrorContext(ctx, "Database connection failed after multiple retries")
	return false
}
