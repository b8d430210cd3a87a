package gemini

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem(question string) map[string]interface{} {
	return map[string]interface{}{
		"question": question,
		"options": map[string]interface{}{
			"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D",
		},
		"correctAnswer": "B",
		"explanation":   "Because B.",
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestParseQuestionsPlainArray(t *testing.T) {
	raw := mustJSON(t, []interface{}{validItem("What is Go?")})
	qs, err := ParseQuestions(raw, 4, 10)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "What is Go?", qs[0].Question)
	assert.Equal(t, "B", qs[0].CorrectAnswer)
	assert.Equal(t, "Because B.", qs[0].Explanation)
	assert.Equal(t, 4, qs[0].LectureNumber)
	assert.Equal(t, "Option C", qs[0].Options["C"])
}

func TestParseQuestionsStripsCodeFences(t *testing.T) {
	raw := "```json\n" + mustJSON(t, []interface{}{validItem("Fenced?")}) + "\n```"
	qs, err := ParseQuestions(raw, 1, 10)
	require.NoError(t, err)
	assert.Len(t, qs, 1)
}

func TestParseQuestionsExtractsArrayFromProse(t *testing.T) {
	raw := "Here is your quiz:\n" + mustJSON(t, []interface{}{validItem("Embedded?")}) + "\nEnjoy!"
	qs, err := ParseQuestions(raw, 1, 10)
	require.NoError(t, err)
	assert.Len(t, qs, 1)
}

func TestParseQuestionsFiltersInvalidItems(t *testing.T) {
	missingAnswer := validItem("No answer")
	delete(missingAnswer, "correctAnswer")

	for name, items := range map[string][]interface{}{
		"invalid first": {missingAnswer, validItem("Valid")},
		"invalid last":  {validItem("Valid"), missingAnswer},
	} {
		qs, err := ParseQuestions(mustJSON(t, items), 1, 10)
		require.NoError(t, err, name)
		require.Len(t, qs, 1, name)
		assert.Equal(t, "Valid", qs[0].Question, name)
	}
}

func TestParseQuestionsDropsItemWithFalsyCorrectOption(t *testing.T) {
	item := validItem("Falsy target")
	item["options"].(map[string]interface{})["B"] = ""
	_, err := ParseQuestions(mustJSON(t, []interface{}{item}), 1, 10)
	require.ErrorIs(t, err, ErrNoValidQuestions)
}

func TestParseQuestionsDropsItemWithFewOptions(t *testing.T) {
	item := validItem("Three options")
	item["options"] = map[string]interface{}{"A": "a", "B": "b", "C": "c"}
	_, err := ParseQuestions(mustJSON(t, []interface{}{item}), 1, 10)
	require.ErrorIs(t, err, ErrNoValidQuestions)
}

func TestParseQuestionsDropsBadAnswerLabel(t *testing.T) {
	item := validItem("Label E")
	item["correctAnswer"] = "E"
	_, err := ParseQuestions(mustJSON(t, []interface{}{item}), 1, 10)
	require.ErrorIs(t, err, ErrNoValidQuestions)
}

func TestParseQuestionsCoercesOptionValues(t *testing.T) {
	item := validItem("Coercion")
	item["options"] = map[string]interface{}{
		"A": 42, "B": "  padded  ", "C": true, "D": "d", "E": "extra",
	}
	qs, err := ParseQuestions(mustJSON(t, []interface{}{item}), 1, 10)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "42", qs[0].Options["A"])
	assert.Equal(t, "padded", qs[0].Options["B"])
	assert.Equal(t, "true", qs[0].Options["C"])
	assert.NotContains(t, qs[0].Options, "E")
}

func TestParseQuestionsTruncatesToRequestedCount(t *testing.T) {
	items := make([]interface{}, 0, 5)
	for i := 0; i < 5; i++ {
		items = append(items, validItem(fmt.Sprintf("Q%d", i)))
	}
	qs, err := ParseQuestions(mustJSON(t, items), 1, 3)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	// Input order preserved.
	assert.Equal(t, "Q0", qs[0].Question)
	assert.Equal(t, "Q2", qs[2].Question)
}

func TestParseQuestionsNotAnArray(t *testing.T) {
	_, err := ParseQuestions(`{"question": "lonely object"}`, 1, 10)
	require.ErrorIs(t, err, ErrNotAnArray)

	_, err = ParseQuestions("no json here at all", 1, 10)
	require.ErrorIs(t, err, ErrNotAnArray)
}

func TestParseQuestionsEmptyArray(t *testing.T) {
	_, err := ParseQuestions("[]", 1, 10)
	require.ErrorIs(t, err, ErrNoValidQuestions)
}
