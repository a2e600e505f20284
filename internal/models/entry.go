package models

// RowRef is a backend-specific row address inside the entry store: the
// absolute sheet row number for the Sheets backend, the row id for the
// SQLite backend. It is only valid for the snapshot it was read from.
type RowRef string

// Item is a single food item inside an entry's calorie breakdown.
type Item struct {
	Label    string `json:"label"`
	Calories int    `json:"calories"`
}

// Entry is one logged food event. Date and Time are rendered in the
// configured local timezone at write time and never change afterwards,
// even when the entry is edited.
type Entry struct {
	Ref         RowRef `json:"-"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // hh:mm AM/PM
	Description string `json:"description"`
	Items       []Item `json:"items"`
	Calories    int    `json:"calories"`
	DailyTotal  int    `json:"daily_total"` // running total as of this row
}

// Estimate is the itemized calorie breakdown returned by the estimator.
type Estimate struct {
	Items []Item `json:"items"`
	Total int    `json:"total_calories"`
}

// CorrectedEstimate is the estimator's answer for an edit: the updated
// breakdown plus a clean canonical description of what was actually
// eaten, which replaces the stored description.
type CorrectedEstimate struct {
	Estimate
	Description string `json:"corrected_description"`
}
