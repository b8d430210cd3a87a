// Package quiz drives quiz generation across lecture PDFs: extraction,
// prompting, rate-limited completion and parsing per lecture, then
// aggregation into a single capped question set.
package quiz

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"learngauge/internal/gemini"
	"learngauge/internal/models"
	"learngauge/internal/ratelimit"
)

// Request-level bounds.
const (
	MinTotalQuestions = 1
	MaxTotalQuestions = 100
	DefaultTotal      = 10

	MinPerLecture     = 1
	MaxPerLecture     = 20
	DefaultPerLecture = 5

	// interLecturePause spaces consecutive lectures to stay under the
	// provider's own limits, independent of the rate limiter's accounting.
	interLecturePause = 2 * time.Second
)

// ValidationError aborts a call before any lecture is processed.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid generation request: " + strings.Join(e.Errors, "; ")
}

// BatchError means every lecture failed to produce questions. The per-lecture
// outcomes are retained so callers keep full diagnostics.
type BatchError struct {
	Message  string
	Outcomes []models.LectureOutcome
}

func (e *BatchError) Error() string { return e.Message }

// SourceFetcher resolves a lecture PDF reference into a readable local file.
type SourceFetcher interface {
	Fetch(ctx context.Context, ref string) (string, func(), error)
}

// TextExtractor extracts normalized text from a local PDF.
type TextExtractor interface {
	Extract(path, lectureLabel string) (string, error)
}

// Completer issues a single completion call against the generative model.
type Completer interface {
	Complete(ctx context.Context, prompt string, questionsCount int) (string, error)
}

// Generator orchestrates one generation call per request. Lectures run
// strictly sequentially; only the rate limiter's window is shared state.
type Generator struct {
	fetcher   SourceFetcher
	extractor TextExtractor
	completer Completer
	limiter   *ratelimit.Limiter

	// Injection points: tests seed rng and collapse the delays.
	rng   *rand.Rand
	pause time.Duration
	sleep func(time.Duration)
	now   func() time.Time
}

// NewGenerator wires a production Generator.
func NewGenerator(fetcher SourceFetcher, extractor TextExtractor, completer Completer, limiter *ratelimit.Limiter) *Generator {
	return &Generator{
		fetcher:   fetcher,
		extractor: extractor,
		completer: completer,
		limiter:   limiter,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		pause:     interLecturePause,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Generate runs the full per-lecture pipeline and aggregates the results.
// Individual lecture failures are recorded and skipped; only request
// validation and a fully empty result abort the call.
func (g *Generator) Generate(ctx context.Context, req models.GenerateQuizRequest) (*models.QuizGenerationResult, error) {
	totalQuestions, errs := validateRequest(req)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	var allQuestions []models.GeneratedQuestion
	outcomes := make([]models.LectureOutcome, 0, len(req.Lectures))

	for i, lecture := range req.Lectures {
		count := clampPerLecture(lecture.QuestionsCount)
		outcome := models.LectureOutcome{
			LectureNumber:      lecture.LectureNumber,
			LectureID:          lecture.LectureID,
			QuestionsRequested: count,
		}

		questions, err := g.processLecture(ctx, lecture, count)
		if err != nil {
			log.Printf("WARN: lecture %d (%s) failed: %v", lecture.LectureNumber, lecture.LectureID, err)
			outcome.Status = models.LectureStatusFailed
			outcome.Error = err.Error()
		} else {
			generatedAt := g.now()
			for j := range questions {
				questions[j].LectureID = lecture.LectureID
				questions[j].GeneratedAt = generatedAt
			}
			outcome.Status = models.LectureStatusSuccess
			outcome.QuestionsGenerated = len(questions)
			allQuestions = append(allQuestions, questions...)
			log.Printf("INFO: lecture %d (%s) produced %d questions", lecture.LectureNumber, lecture.LectureID, len(questions))
		}
		outcomes = append(outcomes, outcome)

		if i < len(req.Lectures)-1 {
			g.sleep(g.pause)
		}
	}

	if len(allQuestions) == 0 {
		return nil, &BatchError{
			Message:  "no questions could be generated from any lecture",
			Outcomes: outcomes,
		}
	}

	generated := len(allQuestions)
	// Shuffle before capping so no single lecture's over-generation dominates
	// the final selection.
	g.rng.Shuffle(len(allQuestions), func(a, b int) {
		allQuestions[a], allQuestions[b] = allQuestions[b], allQuestions[a]
	})
	if len(allQuestions) > totalQuestions {
		allQuestions = allQuestions[:totalQuestions]
	}

	successful := 0
	for _, o := range outcomes {
		if o.Status == models.LectureStatusSuccess {
			successful++
		}
	}

	return &models.QuizGenerationResult{
		CourseID:           req.CourseID,
		Questions:          allQuestions,
		TotalQuestions:     len(allQuestions),
		RequestedQuestions: totalQuestions,
		ProcessedLectures:  outcomes,
		Summary: models.GenerationSummary{
			TotalLectures:      len(req.Lectures),
			SuccessfulLectures: successful,
			FailedLectures:     len(req.Lectures) - successful,
			QuestionsGenerated: generated,
			FinalQuestions:     len(allQuestions),
		},
	}, nil
}

// processLecture runs extract -> prompt -> rate-limited complete -> parse
// for one lecture. Any stage error is returned for outcome recording.
func (g *Generator) processLecture(ctx context.Context, lecture models.LectureRequest, count int) ([]models.GeneratedQuestion, error) {
	label := strconv.Itoa(lecture.LectureNumber)

	path, cleanup, err := g.fetcher.Fetch(ctx, lecture.PdfURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	text, err := g.extractor.Extract(path, label)
	if err != nil {
		return nil, err
	}

	prompt := gemini.BuildPrompt(text, count, label)

	var raw string
	err = g.limiter.ExecuteWithRetry(func() error {
		resp, err := g.completer.Complete(ctx, prompt, count)
		if err != nil {
			return err
		}
		raw = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return gemini.ParseQuestions(raw, lecture.LectureNumber, count)
}

// validateRequest checks the whole request up front; any violation aborts
// the call before lecture processing starts.
func validateRequest(req models.GenerateQuizRequest) (int, []string) {
	var errs []string

	if len(req.Lectures) == 0 {
		errs = append(errs, "at least one lecture is required")
	}
	if strings.TrimSpace(req.CourseID) == "" {
		errs = append(errs, "courseId is required")
	}

	total := req.TotalQuestions
	if total == 0 {
		total = DefaultTotal
	}
	if total < MinTotalQuestions || total > MaxTotalQuestions {
		errs = append(errs, fmt.Sprintf("totalQuestions must be between %d and %d", MinTotalQuestions, MaxTotalQuestions))
	}

	for i, lecture := range req.Lectures {
		if strings.TrimSpace(lecture.PdfURL) == "" {
			errs = append(errs, fmt.Sprintf("lectures[%d]: pdfUrl is required", i))
		}
		if strings.TrimSpace(lecture.LectureID) == "" {
			errs = append(errs, fmt.Sprintf("lectures[%d]: lectureId is required", i))
		}
	}

	return total, errs
}

// clampPerLecture bounds a per-lecture question count into [1,20],
// defaulting when unset.
func clampPerLecture(count int) int {
	if count <= 0 {
		return DefaultPerLecture
	}
	if count > MaxPerLecture {
		return MaxPerLecture
	}
	return count
}
