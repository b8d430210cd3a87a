package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"learngauge/internal/models"
)

// Parse failures. Both indicate a model-output shape problem and are never
// retried.
var (
	ErrNotAnArray       = errors.New("model response is not a JSON array")
	ErrNoValidQuestions = errors.New("no valid questions in model response")
)

var (
	codeFenceRe = regexp.MustCompile("(?i)```(?:json)?")
	// Greedy on purpose: grabs from the first '[' to the last ']'. Pathological
	// inputs with several arrays get captured as one span; preserved behavior.
	jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)
)

var optionLabels = []string{"A", "B", "C", "D"}

// stripCodeFences removes Markdown code-fence wrapping anywhere in the text.
func stripCodeFences(s string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(s, ""))
}

// extractArraySpan locates the first bracket-delimited span in the cleaned
// text. Returns ok=false when no span exists.
func extractArraySpan(s string) (string, bool) {
	span := jsonArrayRe.FindString(s)
	return span, span != ""
}

// ParseQuestions turns the model's raw text response into canonical
// questions for the given lecture, capped at questionsCount in input order.
func ParseQuestions(raw string, lectureNumber, questionsCount int) ([]models.GeneratedQuestion, error) {
	cleaned := stripCodeFences(raw)

	candidate := cleaned
	if span, ok := extractArraySpan(cleaned); ok {
		candidate = span
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnArray, err)
	}
	items, ok := parsed.([]interface{})
	if !ok {
		return nil, ErrNotAnArray
	}

	questions := make([]models.GeneratedQuestion, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok || !isValidQuestion(obj) {
			continue
		}
		questions = append(questions, mapQuestion(obj, lectureNumber))
	}

	if len(questions) == 0 {
		return nil, ErrNoValidQuestions
	}
	if len(questions) > questionsCount {
		questions = questions[:questionsCount]
	}
	return questions, nil
}

// isValidQuestion applies the structural filter. Items failing any check are
// dropped, never repaired.
func isValidQuestion(obj map[string]interface{}) bool {
	question, ok := obj["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return false
	}
	options, ok := obj["options"].(map[string]interface{})
	if !ok || len(options) < 4 {
		return false
	}
	correct, ok := obj["correctAnswer"].(string)
	if !ok || !isOptionLabel(correct) {
		return false
	}
	if !isTruthy(options[correct]) {
		return false
	}
	explanation, ok := obj["explanation"].(string)
	if !ok || strings.TrimSpace(explanation) == "" {
		return false
	}
	return true
}

// mapQuestion coerces a surviving item into the canonical shape. Option
// labels that are present but value-less coerce to the empty string.
func mapQuestion(obj map[string]interface{}, lectureNumber int) models.GeneratedQuestion {
	rawOptions, _ := obj["options"].(map[string]interface{})
	options := make(map[string]string, len(optionLabels))
	for _, label := range optionLabels {
		options[label] = strings.TrimSpace(coerceString(rawOptions[label]))
	}
	return models.GeneratedQuestion{
		Question:      strings.TrimSpace(obj["question"].(string)),
		Options:       options,
		CorrectAnswer: obj["correctAnswer"].(string),
		Explanation:   strings.TrimSpace(obj["explanation"].(string)),
		LectureNumber: lectureNumber,
	}
}

func isOptionLabel(s string) bool {
	for _, label := range optionLabels {
		if s == label {
			return true
		}
	}
	return false
}

// isTruthy mirrors loose truthiness over decoded JSON values.
func isTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case float64:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

// coerceString renders any decoded JSON value as a string.
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
