package models

import (
	"time"

	"github.com/google/uuid"
)

// LectureRequest describes one lecture PDF to generate questions from.
// PdfURL may be an http(s) URL, an s3://bucket/key reference, or a local path.
type LectureRequest struct {
	PdfURL         string `json:"pdfUrl"`
	LectureID      string `json:"lectureId"`
	LectureNumber  int    `json:"lectureNumber"`
	QuestionsCount int    `json:"questionsCount,omitempty"`
}

// GenerateQuizRequest is the payload for POST /api/quizzes/generate.
type GenerateQuizRequest struct {
	Lectures       []LectureRequest `json:"lectures"`
	CourseID       string           `json:"courseId"`
	TotalQuestions int              `json:"totalQuestions,omitempty"`
}

// GeneratedQuestion is the canonical question shape produced by the parser.
// Options always carries the four labels A-D after coercion.
type GeneratedQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correctAnswer"`
	Explanation   string            `json:"explanation"`
	LectureNumber int               `json:"lectureNumber"`
	LectureID     string            `json:"lectureId,omitempty"`
	GeneratedAt   time.Time         `json:"generatedAt,omitempty"`
}

// Lecture outcome statuses.
const (
	LectureStatusSuccess = "success"
	LectureStatusFailed  = "failed"
)

// LectureOutcome reports how a single lecture fared, in input order.
type LectureOutcome struct {
	LectureNumber      int    `json:"lectureNumber"`
	LectureID          string `json:"lectureId"`
	QuestionsRequested int    `json:"questionsRequested"`
	QuestionsGenerated int    `json:"questionsGenerated"`
	Status             string `json:"status"`
	Error              string `json:"error,omitempty"`
}

// GenerationSummary carries the aggregate counts of a generation call.
type GenerationSummary struct {
	TotalLectures      int `json:"totalLectures"`
	SuccessfulLectures int `json:"successfulLectures"`
	FailedLectures     int `json:"failedLectures"`
	QuestionsGenerated int `json:"questionsGenerated"`
	FinalQuestions     int `json:"finalQuestions"`
}

// QuizGenerationResult is what the orchestrator hands back to the API layer.
type QuizGenerationResult struct {
	CourseID           string              `json:"courseId"`
	Questions          []GeneratedQuestion `json:"questions"`
	TotalQuestions     int                 `json:"totalQuestions"`
	RequestedQuestions int                 `json:"requestedQuestions"`
	ProcessedLectures  []LectureOutcome    `json:"processedLectures"`
	Summary            GenerationSummary   `json:"summary"`
}

// SaveQuizRequest is the payload for POST /api/quizzes.
type SaveQuizRequest struct {
	Questions     []GeneratedQuestion `json:"questions"`
	CourseID      string              `json:"courseId"`
	LectureIDs    []string            `json:"lectureIds"`
	Title         string              `json:"title,omitempty"`
	QuestionCount int                 `json:"questionCount,omitempty"`
}

// QuizMetadata holds derived figures stored alongside a saved quiz.
type QuizMetadata struct {
	AverageQuestionsPerLecture float64 `json:"averageQuestionsPerLecture"`
}

// SavedQuiz is the persisted quiz entity.
type SavedQuiz struct {
	ID                  uuid.UUID           `json:"id"`
	Title               string              `json:"title"`
	Course              string              `json:"course"`
	Lectures            []string            `json:"lectures"`
	Questions           []GeneratedQuestion `json:"questions"`
	QuestionCount       int                 `json:"questionCount"`
	ActualQuestionCount int                 `json:"actualQuestionCount"`
	CreatedBy           uuid.UUID           `json:"createdBy"`
	CreatedAt           time.Time           `json:"createdAt"`
	IsActive            bool                `json:"isActive"`
	Metadata            QuizMetadata        `json:"metadata"`
}

// FERRecord is one emotion-tagged face observation produced by the external
// FER model during a lecture session. The backend only stores and counts them.
type FERRecord struct {
	ID         uuid.UUID `json:"id"`
	CourseID   string    `json:"courseId"`
	LectureID  string    `json:"lectureId"`
	StudentID  string    `json:"studentId"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	CapturedAt time.Time `json:"capturedAt"`
}

// FERSummary aggregates stored FER records per emotion.
type FERSummary struct {
	CourseID  string         `json:"courseId"`
	LectureID string         `json:"lectureId,omitempty"`
	Total     int            `json:"total"`
	ByEmotion map[string]int `json:"byEmotion"`
}
