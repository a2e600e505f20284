package tracker

import (
	"fmt"
	"strings"

	"caltext/internal/models"
)

// Reply texts are plain strings rendered identically for every transport;
// the handler decides whether to wrap them in a TwiML envelope.

func formatLogReply(entryNum int, est models.Estimate, total, target int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry #%d logged: %d cal\n", entryNum, est.Total)
	writeItems(&b, est.Items)
	b.WriteString("\n")
	writeTotals(&b, total, target)
	return b.String()
}

func formatSummaryReply(entries []models.Entry, target int) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Nothing logged today.\nRemaining: %d", target)
	}

	var b strings.Builder
	b.WriteString("Today's log:\n")
	total := 0
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s %s (%d cal)\n", i+1, e.Time, e.Description, e.Calories)
		total += e.Calories
	}
	b.WriteString("\n")
	writeTotals(&b, total, target)
	return b.String()
}

func formatEditReply(entryNum int, ce models.CorrectedEstimate, total, target int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry #%d updated: %s, %d cal\n", entryNum, ce.Description, ce.Total)
	writeItems(&b, ce.Items)
	b.WriteString("\n")
	writeTotals(&b, total, target)
	return b.String()
}

func formatDeleteReply(entryNum, total, target int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry #%d deleted.\n", entryNum)
	writeTotals(&b, total, target)
	return b.String()
}

func formatOutOfRangeReply(e *models.OutOfRangeError) string {
	noun := "entries"
	if e.Count == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("Entry #%d not found. You have %d %s today.", e.Requested, e.Count, noun)
}

const (
	estimatorErrorReply = "Sorry, I couldn't estimate calories for that. Please try again."
	storeErrorReply     = "Sorry, I couldn't reach the food log. Please try again."
	emptyMessageReply   = "Tell me what you ate and I'll log it. Send \"summary\" for today's log."
)

func writeItems(b *strings.Builder, items []models.Item) {
	for _, it := range items {
		fmt.Fprintf(b, "  • %s: %d cal\n", it.Label, it.Calories)
	}
}

func writeTotals(b *strings.Builder, total, target int) {
	fmt.Fprintf(b, "Daily total: %d / %d\n", total, target)
	fmt.Fprintf(b, "Remaining: %d", target-total)
}
