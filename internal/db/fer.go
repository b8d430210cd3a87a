package db

import (
	"context"
	"fmt"

	"learngauge/internal/models"

	"github.com/google/uuid"
)

// FERRepo stores emotion-tagged face records produced by the external FER
// model during lecture sessions. Store-and-summarize only; the capture and
// recognition pipeline lives outside this service.
type FERRepo struct {
	db *DB
}

// InsertRecords stores a batch of FER observations.
func (r *FERRepo) InsertRecords(ctx context.Context, records []models.FERRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx insert fer records: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, rec := range records {
		id := rec.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := tx.Exec(ctx, `
INSERT INTO fer_records (id, course_id, lecture_id, student_id, emotion, confidence, captured_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, rec.CourseID, rec.LectureID, rec.StudentID, rec.Emotion, rec.Confidence, rec.CapturedAt)
		if err != nil {
			return fmt.Errorf("insert fer record for student %s: %w", rec.StudentID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fer records tx: %w", err)
	}
	return nil
}

// Summarize counts stored records per emotion for a course, optionally
// narrowed to one lecture.
func (r *FERRepo) Summarize(ctx context.Context, courseID, lectureID string) (*models.FERSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT emotion, COUNT(*)
FROM fer_records
WHERE course_id = $1 AND ($2 = '' OR lecture_id = $2)
GROUP BY emotion`, courseID, lectureID)
	if err != nil {
		return nil, fmt.Errorf("summarize fer records for course %s: %w", courseID, err)
	}
	defer rows.Close()

	summary := &models.FERSummary{
		CourseID:  courseID,
		LectureID: lectureID,
		ByEmotion: make(map[string]int),
	}
	for rows.Next() {
		var emotion string
		var count int
		if err := rows.Scan(&emotion, &count); err != nil {
			return nil, fmt.Errorf("scan fer summary row: %w", err)
		}
		summary.ByEmotion[emotion] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fer summary for course %s: %w", courseID, err)
	}
	return summary, nil
}
