package tracker

import "caltext/internal/models"

// Resolve maps a 1-based, today-scoped entry number onto an index into
// the day's chronological snapshot. Entry numbers are never stored: they
// are positions within whatever ListToday returned for this request, so
// deleting an entry shifts every later number down by one on the next
// resolve. Returns an OutOfRangeError for n < 1 or n > len(today).
func Resolve(n int, today []models.Entry) (int, error) {
	if n < 1 || n > len(today) {
		return 0, &models.OutOfRangeError{Requested: n, Count: len(today)}
	}
	return n - 1, nil
}
