package models

import "fmt"

// OutOfRangeError is returned when an edit/delete references an entry
// number outside 1..Count for the current day. No mutation happens.
type OutOfRangeError struct {
	Requested int
	Count     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("entry #%d out of range: %d entries today", e.Requested, e.Count)
}

// EstimationError wraps any estimator failure, upstream or parse-level.
// The orchestration layer turns it into a "try again" reply and skips
// the store write entirely.
type EstimationError struct {
	Reason string
	Err    error
}

func (e *EstimationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calorie estimation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("calorie estimation failed: %s", e.Reason)
}

func (e *EstimationError) Unwrap() error { return e.Err }
