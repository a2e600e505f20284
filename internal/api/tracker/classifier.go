package tracker

import (
	"regexp"
	"strconv"
	"strings"
)

// IntentKind discriminates the closed set of user actions.
type IntentKind int

const (
	IntentLog IntentKind = iota
	IntentSummary
	IntentEdit
	IntentDelete
)

func (k IntentKind) String() string {
	switch k {
	case IntentSummary:
		return "summary"
	case IntentEdit:
		return "edit"
	case IntentDelete:
		return "delete"
	default:
		return "log"
	}
}

// Intent is the classified user action. Description holds the food text
// for a Log and the correction text for an Edit; EntryNum is the 1-based
// today-scoped entry number for Edit and Delete.
type Intent struct {
	Kind        IntentKind
	Description string
	EntryNum    int
}

var (
	deletePattern = regexp.MustCompile(`(?i)^(?:delete|remove)\s+(\d+)$`)
	editPattern   = regexp.MustCompile(`(?is)^(?:edit|update)\s+(\d+):?\s+(.+)$`)
	summaryWords  = []string{"summary", "today", "total"}
)

// Classify maps one raw inbound message to an Intent. It is total and
// never fails: anything that isn't a recognized command is a Log of the
// trimmed original text, so a food description can never be rejected.
// Command forms are checked in priority order, case-insensitively.
func Classify(text string) Intent {
	trimmed := strings.TrimSpace(text)

	for _, w := range summaryWords {
		if strings.EqualFold(trimmed, w) {
			return Intent{Kind: IntentSummary}
		}
	}

	if m := deletePattern.FindStringSubmatch(trimmed); m != nil {
		// A number too large for int falls through to the Log default,
		// same as any other unparseable command.
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Intent{Kind: IntentDelete, EntryNum: n}
		}
	}

	if m := editPattern.FindStringSubmatch(trimmed); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Intent{Kind: IntentEdit, EntryNum: n, Description: strings.TrimSpace(m[2])}
		}
	}

	return Intent{Kind: IntentLog, Description: trimmed}
}
