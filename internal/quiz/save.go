package quiz

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"learngauge/internal/models"

	"github.com/google/uuid"
)

// BuildSavedQuiz validates a save request and assembles the quiz entity to
// persist. It never extracts, prompts or calls the model: the questions are
// already generated (or client-assembled) content.
func BuildSavedQuiz(req models.SaveQuizRequest, createdBy uuid.UUID, now time.Time) (*models.SavedQuiz, error) {
	var errs []string
	if len(req.Questions) == 0 {
		errs = append(errs, "questions are required")
	}
	if strings.TrimSpace(req.CourseID) == "" {
		errs = append(errs, "courseId is required")
	}
	if len(req.LectureIDs) == 0 {
		errs = append(errs, "lectureIds are required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	// Minimal shape revalidation: drop anything missing one of the four
	// required fields. Dropped items are counted, not repaired.
	kept := make([]models.GeneratedQuestion, 0, len(req.Questions))
	for _, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" ||
			len(q.Options) == 0 ||
			strings.TrimSpace(q.CorrectAnswer) == "" ||
			strings.TrimSpace(q.Explanation) == "" {
			continue
		}
		kept = append(kept, q)
	}
	if dropped := len(req.Questions) - len(kept); dropped > 0 {
		log.Printf("WARN: dropped %d incomplete questions while saving quiz for course %s", dropped, req.CourseID)
	}
	if len(kept) == 0 {
		return nil, &ValidationError{Errors: []string{"questions contain no valid items"}}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = fmt.Sprintf("Quiz generated on %s", now.Format("January 2, 2006"))
	}

	questionCount := req.QuestionCount
	if questionCount <= 0 {
		questionCount = len(kept)
	}

	avg := math.Round(float64(len(kept))/float64(len(req.LectureIDs))*100) / 100

	return &models.SavedQuiz{
		ID:                  uuid.New(),
		Title:               title,
		Course:              req.CourseID,
		Lectures:            req.LectureIDs,
		Questions:           kept,
		QuestionCount:       questionCount,
		ActualQuestionCount: len(kept),
		CreatedBy:           createdBy,
		CreatedAt:           now,
		IsActive:            true,
		Metadata: models.QuizMetadata{
			AverageQuestionsPerLecture: avg,
		},
	}, nil
}
