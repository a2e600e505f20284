package tracker

import (
	"context"

	"caltext/internal/models"
)

// EntryStore is the system of record for logged entries. All cross-request
// state lives behind this interface; the service re-reads it on every
// request and holds nothing in memory between requests. Concurrent writers
// are not serialized here: last write wins is accepted for a single-user
// log.
type EntryStore interface {
	// ListToday returns today's entries in chronological (= storage)
	// order, each carrying the RowRef needed to address it later in the
	// same request.
	ListToday(ctx context.Context) ([]models.Entry, error)
	Append(ctx context.Context, entry models.Entry) error
	// UpdateAt replaces description, items and calories of the addressed
	// row in place. Date and time columns are left untouched.
	UpdateAt(ctx context.Context, ref models.RowRef, entry models.Entry) error
	DeleteAt(ctx context.Context, ref models.RowRef) error
	// RecomputeDailyTotals walks today's rows in order, rewrites each
	// row's running-total column and returns the final daily total.
	// Idempotent: recomputing twice yields the same result.
	RecomputeDailyTotals(ctx context.Context) (int, error)
}

// runningTotals computes the per-row running totals for a day's entries
// in order. Shared by both store backends during recomputation.
func runningTotals(entries []models.Entry) []int {
	totals := make([]int, len(entries))
	running := 0
	for i, e := range entries {
		running += e.Calories
		totals[i] = running
	}
	return totals
}
