package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Summary(t *testing.T) {
	for _, text := range []string{"summary", "Today", "TOTAL", "  summary  ", "Summary"} {
		intent := Classify(text)
		assert.Equal(t, IntentSummary, intent.Kind, "text %q", text)
	}
}

func TestClassify_Delete(t *testing.T) {
	intent := Classify("delete 2")
	assert.Equal(t, IntentDelete, intent.Kind)
	assert.Equal(t, 2, intent.EntryNum)

	intent = Classify("Remove 14")
	assert.Equal(t, IntentDelete, intent.Kind)
	assert.Equal(t, 14, intent.EntryNum)

	// Classification is permissive: range checks belong to Resolve.
	intent = Classify("delete 0")
	assert.Equal(t, IntentDelete, intent.Kind)
	assert.Equal(t, 0, intent.EntryNum)
}

func TestClassify_DeleteWithoutNumberIsLog(t *testing.T) {
	for _, text := range []string{"delete", "delete the eggs", "remove some toast"} {
		intent := Classify(text)
		assert.Equal(t, IntentLog, intent.Kind, "text %q", text)
		assert.Equal(t, text, intent.Description)
	}
}

func TestClassify_Edit(t *testing.T) {
	intent := Classify("edit 2 grilled chicken")
	assert.Equal(t, IntentEdit, intent.Kind)
	assert.Equal(t, 2, intent.EntryNum)
	assert.Equal(t, "grilled chicken", intent.Description)

	intent = Classify("update 2: oatmeal with berries")
	assert.Equal(t, IntentEdit, intent.Kind)
	assert.Equal(t, 2, intent.EntryNum)
	assert.Equal(t, "oatmeal with berries", intent.Description)

	// Original casing of the correction text is preserved.
	intent = Classify("Edit 1 Kirkland Peanut Butter, two tbsp")
	assert.Equal(t, IntentEdit, intent.Kind)
	assert.Equal(t, "Kirkland Peanut Butter, two tbsp", intent.Description)
}

func TestClassify_DefaultIsVerbatimLog(t *testing.T) {
	for _, text := range []string{
		"two eggs and toast",
		"edit",
		"update 3",       // no correction text
		"a summary of my day: busy", // not an exact summary word
		"Deleted scenes snack mix",
	} {
		intent := Classify(text)
		assert.Equal(t, IntentLog, intent.Kind, "text %q", text)
		assert.Equal(t, text, intent.Description)
	}
}

func TestClassify_TrimsWhitespace(t *testing.T) {
	intent := Classify("  two eggs  ")
	assert.Equal(t, IntentLog, intent.Kind)
	assert.Equal(t, "two eggs", intent.Description)
}

func TestClassify_HugeNumberFallsThrough(t *testing.T) {
	intent := Classify("delete 99999999999999999999")
	assert.Equal(t, IntentLog, intent.Kind)
}
