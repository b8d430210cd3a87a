package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"learngauge/internal/models"
	"learngauge/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	failRefs map[string]error
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, ref string) (string, func(), error) {
	f.calls++
	if err, ok := f.failRefs[ref]; ok {
		return "", func() {}, err
	}
	return ref, func() {}, nil
}

type fakeExtractor struct {
	texts    map[string]string
	failRefs map[string]error
}

func (f *fakeExtractor) Extract(path, _ string) (string, error) {
	if err, ok := f.failRefs[path]; ok {
		return "", err
	}
	if text, ok := f.texts[path]; ok {
		return text, nil
	}
	return "Lecture content about compilers, long enough to prompt with.", nil
}

type fakeCompleter struct {
	perCall func(call int) (string, error)
	calls   int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, count int) (string, error) {
	f.calls++
	if f.perCall != nil {
		return f.perCall(f.calls)
	}
	return questionsJSON(count), nil
}

// questionsJSON renders n syntactically valid question objects.
func questionsJSON(n int) string {
	items := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]interface{}{
			"question": fmt.Sprintf("Question %d?", i),
			"options": map[string]string{
				"A": "a", "B": "b", "C": "c", "D": "d",
			},
			"correctAnswer": "A",
			"explanation":   "Because A.",
		})
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func newTestGenerator(fetcher *fakeFetcher, extractor *fakeExtractor, completer *fakeCompleter) *Generator {
	g := NewGenerator(fetcher, extractor, completer, ratelimit.New(100, time.Minute, 2))
	g.pause = 0
	g.sleep = func(time.Duration) {}
	g.rng = rand.New(rand.NewSource(42))
	g.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return g
}

func lecture(ref, id string, number, count int) models.LectureRequest {
	return models.LectureRequest{PdfURL: ref, LectureID: id, LectureNumber: number, QuestionsCount: count}
}

func TestGenerateValidationFailures(t *testing.T) {
	completer := &fakeCompleter{}
	g := newTestGenerator(&fakeFetcher{}, &fakeExtractor{}, completer)

	cases := map[string]models.GenerateQuizRequest{
		"no lectures": {CourseID: "cs101"},
		"no course": {
			Lectures: []models.LectureRequest{lecture("l1.pdf", "lec-1", 1, 5)},
		},
		"total out of range": {
			CourseID:       "cs101",
			Lectures:       []models.LectureRequest{lecture("l1.pdf", "lec-1", 1, 5)},
			TotalQuestions: 101,
		},
		"missing pdfUrl": {
			CourseID: "cs101",
			Lectures: []models.LectureRequest{{LectureID: "lec-1", LectureNumber: 1}},
		},
		"missing lectureId": {
			CourseID: "cs101",
			Lectures: []models.LectureRequest{{PdfURL: "l1.pdf", LectureNumber: 1}},
		},
	}

	for name, req := range cases {
		_, err := g.Generate(context.Background(), req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, name)
		assert.NotEmpty(t, verr.Errors, name)
	}
	// Validation failures never reach the completion stage.
	assert.Zero(t, completer.calls)
}

func TestGeneratePartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{failRefs: map[string]error{
		"missing.pdf": errors.New("source file not found: lecture 1 (missing.pdf)"),
	}}
	g := newTestGenerator(fetcher, &fakeExtractor{}, &fakeCompleter{})

	res, err := g.Generate(context.Background(), models.GenerateQuizRequest{
		CourseID: "cs101",
		Lectures: []models.LectureRequest{
			lecture("missing.pdf", "lec-1", 1, 4),
			lecture("ok.pdf", "lec-2", 2, 4),
		},
		TotalQuestions: 20,
	})
	require.NoError(t, err)

	require.Len(t, res.ProcessedLectures, 2)
	assert.Equal(t, models.LectureStatusFailed, res.ProcessedLectures[0].Status)
	assert.Contains(t, res.ProcessedLectures[0].Error, "not found")
	assert.Equal(t, models.LectureStatusSuccess, res.ProcessedLectures[1].Status)
	assert.Equal(t, 4, res.ProcessedLectures[1].QuestionsGenerated)

	require.Len(t, res.Questions, 4)
	for _, q := range res.Questions {
		assert.Equal(t, "lec-2", q.LectureID)
		assert.Equal(t, 2, q.LectureNumber)
		assert.False(t, q.GeneratedAt.IsZero())
	}

	assert.Equal(t, 1, res.Summary.SuccessfulLectures)
	assert.Equal(t, 1, res.Summary.FailedLectures)
	assert.Equal(t, 4, res.Summary.QuestionsGenerated)
	assert.Equal(t, 4, res.Summary.FinalQuestions)
}

func TestGenerateTotalFailure(t *testing.T) {
	extractor := &fakeExtractor{failRefs: map[string]error{
		"a.pdf": errors.New("insufficient extractable text"),
		"b.pdf": errors.New("insufficient extractable text"),
	}}
	g := newTestGenerator(&fakeFetcher{}, extractor, &fakeCompleter{})

	_, err := g.Generate(context.Background(), models.GenerateQuizRequest{
		CourseID: "cs101",
		Lectures: []models.LectureRequest{
			lecture("a.pdf", "lec-1", 1, 3),
			lecture("b.pdf", "lec-2", 2, 3),
		},
	})

	var berr *BatchError
	require.ErrorAs(t, err, &berr)
	require.Len(t, berr.Outcomes, 2)
	for _, o := range berr.Outcomes {
		assert.Equal(t, models.LectureStatusFailed, o.Status)
		assert.NotEmpty(t, o.Error)
	}
}

func TestGenerateShuffleAndCap(t *testing.T) {
	g := newTestGenerator(&fakeFetcher{}, &fakeExtractor{}, &fakeCompleter{})

	res, err := g.Generate(context.Background(), models.GenerateQuizRequest{
		CourseID: "cs101",
		Lectures: []models.LectureRequest{
			lecture("a.pdf", "lec-1", 1, 5),
			lecture("b.pdf", "lec-2", 2, 5),
			lecture("c.pdf", "lec-3", 3, 5),
		},
		TotalQuestions: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 15, res.Summary.QuestionsGenerated)
	require.Len(t, res.Questions, 10)
	assert.Equal(t, 10, res.Summary.FinalQuestions)

	// Membership only: every selected question belongs to one of the lectures.
	for _, q := range res.Questions {
		assert.Contains(t, []string{"lec-1", "lec-2", "lec-3"}, q.LectureID)
	}
}

func TestGenerateInterLecturePause(t *testing.T) {
	g := newTestGenerator(&fakeFetcher{}, &fakeExtractor{}, &fakeCompleter{})
	g.pause = interLecturePause
	var pauses []time.Duration
	g.sleep = func(d time.Duration) { pauses = append(pauses, d) }

	_, err := g.Generate(context.Background(), models.GenerateQuizRequest{
		CourseID: "cs101",
		Lectures: []models.LectureRequest{
			lecture("a.pdf", "lec-1", 1, 2),
			lecture("b.pdf", "lec-2", 2, 2),
			lecture("c.pdf", "lec-3", 3, 2),
		},
	})
	require.NoError(t, err)

	// Pause between lectures, not after the last one.
	require.Len(t, pauses, 2)
	for _, d := range pauses {
		assert.Equal(t, 2*time.Second, d)
	}
}

func TestGenerateNonRetryableCompletionFailure(t *testing.T) {
	completer := &fakeCompleter{perCall: func(int) (string, error) {
		return "", errors.New("unexpected response shape from model")
	}}
	g := newTestGenerator(&fakeFetcher{}, &fakeExtractor{}, completer)

	_, err := g.Generate(context.Background(), models.GenerateQuizRequest{
		CourseID: "cs101",
		Lectures: []models.LectureRequest{lecture("a.pdf", "lec-1", 1, 3)},
	})

	var berr *BatchError
	require.ErrorAs(t, err, &berr)
	// No retry happened for a shape failure.
	assert.Equal(t, 1, completer.calls)
}

func TestGeneratePerLectureCountClamped(t *testing.T) {
	g := newTestGenerator(&fakeFetcher{}, &fakeExtractor{}, &fakeCompleter{})

	res, err := g.Generate(context.Background(), models.GenerateQuizRequest{
		CourseID: "cs101",
		Lectures: []models.LectureRequest{
			lecture("a.pdf", "lec-1", 1, 0),  // defaults
			lecture("b.pdf", "lec-2", 2, 50), // clamped
		},
		TotalQuestions: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultPerLecture, res.ProcessedLectures[0].QuestionsRequested)
	assert.Equal(t, MaxPerLecture, res.ProcessedLectures[1].QuestionsRequested)
}
