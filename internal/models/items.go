package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatItems renders a breakdown for the store's items column, e.g.
// "Egg (90), Toast (120)".
func FormatItems(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%d)", it.Label, it.Calories))
	}
	return strings.Join(parts, ", ")
}

var itemPattern = regexp.MustCompile(`([^(]+?)\s*\((\d+)\)(?:,\s*|$)`)

// ParseItems is the inverse of FormatItems, best-effort: segments that
// don't look like "label (calories)" are skipped rather than failing,
// since the column may hold hand-edited text.
func ParseItems(s string) []Item {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var items []Item
	for _, m := range itemPattern.FindAllStringSubmatch(s, -1) {
		cal, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		items = append(items, Item{Label: strings.TrimSpace(m[1]), Calories: cal})
	}
	return items
}

// SumItems returns the calorie sum of a breakdown.
func SumItems(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Calories
	}
	return total
}
