package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"caltext/internal/models"
)

func TestFormatLogReply(t *testing.T) {
	est := models.Estimate{
		Items: []models.Item{
			{Label: "Eggs", Calories: 180},
			{Label: "Toast", Calories: 200},
		},
		Total: 380,
	}

	got := formatLogReply(1, est, 380, 2600)

	want := "Entry #1 logged: 380 cal\n" +
		"  • Eggs: 180 cal\n" +
		"  • Toast: 200 cal\n" +
		"\n" +
		"Daily total: 380 / 2600\n" +
		"Remaining: 2220"
	assert.Equal(t, want, got)
}

func TestFormatLogReply_NoItems(t *testing.T) {
	got := formatLogReply(2, models.Estimate{Total: 250}, 630, 2600)
	assert.Contains(t, got, "Entry #2 logged: 250 cal")
	assert.NotContains(t, got, "•")
}

func TestFormatSummaryReply(t *testing.T) {
	entries := []models.Entry{
		{Time: "08:30 AM", Description: "two eggs and toast", Calories: 380},
		{Time: "12:10 PM", Description: "chicken salad", Calories: 450},
	}

	got := formatSummaryReply(entries, 2600)

	assert.Contains(t, got, "Today's log:")
	assert.Contains(t, got, "1. 08:30 AM two eggs and toast (380 cal)")
	assert.Contains(t, got, "2. 12:10 PM chicken salad (450 cal)")
	assert.Contains(t, got, "Daily total: 830 / 2600")
	assert.Contains(t, got, "Remaining: 1770")
}

func TestFormatSummaryReply_Empty(t *testing.T) {
	got := formatSummaryReply(nil, 2600)
	assert.Equal(t, "Nothing logged today.\nRemaining: 2600", got)
}

func TestFormatEditReply(t *testing.T) {
	ce := models.CorrectedEstimate{
		Estimate: models.Estimate{
			Items: []models.Item{{Label: "Caesar salad", Calories: 550}},
			Total: 550,
		},
		Description: "large caesar salad with chicken",
	}

	got := formatEditReply(2, ce, 1630, 2600)

	assert.Contains(t, got, "Entry #2 updated: large caesar salad with chicken, 550 cal")
	assert.Contains(t, got, "  • Caesar salad: 550 cal")
	assert.Contains(t, got, "Remaining: 970")
}

func TestFormatDeleteReply(t *testing.T) {
	got := formatDeleteReply(3, 1080, 2600)
	assert.Equal(t, "Entry #3 deleted.\nDaily total: 1080 / 2600\nRemaining: 1520", got)
}

func TestFormatOutOfRangeReply(t *testing.T) {
	assert.Equal(t, "Entry #5 not found. You have 3 entries today.",
		formatOutOfRangeReply(&models.OutOfRangeError{Requested: 5, Count: 3}))
	assert.Equal(t, "Entry #2 not found. You have 1 entry today.",
		formatOutOfRangeReply(&models.OutOfRangeError{Requested: 2, Count: 1}))
	assert.Equal(t, "Entry #1 not found. You have 0 entries today.",
		formatOutOfRangeReply(&models.OutOfRangeError{Requested: 1, Count: 0}))
}

func TestFormatSummaryReply_OverTarget(t *testing.T) {
	entries := []models.Entry{
		{Time: "07:00 PM", Description: "deep dish pizza", Calories: 2900},
	}
	got := formatSummaryReply(entries, 2600)
	assert.Contains(t, got, "Remaining: -300")
}
