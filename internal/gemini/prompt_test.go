package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptBudget(t *testing.T) {
	assert.Equal(t, 7000, PromptBudget(1))
	assert.Equal(t, 15000, PromptBudget(5))
	// Scaling caps at the ceiling.
	assert.Equal(t, 20000, PromptBudget(10))
	assert.Equal(t, 20000, PromptBudget(20))
}

func TestTruncateToBudgetShortTextUntouched(t *testing.T) {
	text := "Short lecture text."
	assert.Equal(t, text, TruncateToBudget(text, 100))
}

func TestTruncateToBudgetCutsAtSentenceBoundary(t *testing.T) {
	// Sentence terminator at 85% of a 100-char budget.
	text := strings.Repeat("a", 84) + "." + strings.Repeat("b", 65)
	got := TruncateToBudget(text, 100)
	assert.Equal(t, strings.Repeat("a", 84)+".", got)
	assert.True(t, strings.HasSuffix(got, "."))
	assert.Len(t, got, 85)
}

func TestTruncateToBudgetEllipsisWhenNoLateBoundary(t *testing.T) {
	// Only terminator sits well before the 80% threshold.
	text := strings.Repeat("a", 10) + "." + strings.Repeat("b", 200)
	got := TruncateToBudget(text, 100)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, got, 103)
}

func TestBuildPromptRendersTemplate(t *testing.T) {
	prompt := BuildPrompt("Photosynthesis converts light into chemical energy.", 7, "3")
	assert.Contains(t, prompt, "exactly 7 multiple-choice questions")
	assert.Contains(t, prompt, "lecture 3")
	assert.Contains(t, prompt, `"lectureNumber": 3`)
	assert.Contains(t, prompt, "Photosynthesis converts light into chemical energy.")
}
