package gemini

import (
	"fmt"
	"strings"
)

const (
	// Character budget for lecture text embedded in a prompt.
	promptBaseBudget     = 5000
	promptPerQuestion    = 2000
	promptBudgetCeiling  = 20000
	sentenceCutThreshold = 0.8
)

// promptTemplate is the generation instruction rendered around the lecture
// text. The model must answer with a bare JSON array; the parser tolerates
// fenced output anyway.
const promptTemplate = `You are generating a multiple-choice quiz for lecture %s of a university course.

Based ONLY on the lecture content below, create exactly %d multiple-choice questions.

Requirements:
1. Each question must have exactly 4 options labeled A, B, C and D.
2. Exactly one option is correct.
3. Incorrect options must be plausible and non-trivial; avoid obvious or joke answers.
4. Each question carries a 1-2 sentence explanation of why the correct answer is correct.
5. Respond with VALID JSON ONLY: a JSON array of objects, no prose, no markdown.

Each object in the array must have this exact shape:
{
  "question": "Question text?",
  "options": {"A": "First option", "B": "Second option", "C": "Third option", "D": "Fourth option"},
  "correctAnswer": "A",
  "explanation": "Why the correct answer is correct.",
  "lectureNumber": %s
}

Lecture content:
%s`

// PromptBudget computes the character budget for lecture text, scaling with
// the requested question count and capped at the ceiling.
func PromptBudget(questionsCount int) int {
	budget := promptBaseBudget + questionsCount*promptPerQuestion
	if budget > promptBudgetCeiling {
		budget = promptBudgetCeiling
	}
	return budget
}

// TruncateToBudget cuts text to at most budget characters, preferring to end
// at a sentence boundary when one lies at or past 80% of the budget. When no
// usable boundary exists, the raw truncation gets an ellipsis marker.
func TruncateToBudget(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	cut := text[:budget]
	if idx := strings.LastIndex(cut, "."); idx >= int(float64(budget)*sentenceCutThreshold) {
		return cut[:idx+1]
	}
	return cut + "..."
}

// BuildPrompt renders the generation instruction for one lecture. Pure; no
// I/O and no retained state.
func BuildPrompt(text string, questionsCount int, lectureLabel string) string {
	bounded := TruncateToBudget(text, PromptBudget(questionsCount))
	return fmt.Sprintf(promptTemplate, lectureLabel, questionsCount, lectureLabel, bounded)
}
