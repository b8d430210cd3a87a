package db

import (
	"context"
	"encoding/json"
	"fmt"

	"learngauge/internal/models"

	"github.com/google/uuid"
)

// QuizRepo persists saved quizzes. Questions are stored as a JSONB document;
// the core only relies on a save-and-return contract.
type QuizRepo struct {
	db *DB
}

// Insert stores a saved quiz.
func (r *QuizRepo) Insert(ctx context.Context, q *models.SavedQuiz) error {
	questionsJSON, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal quiz questions: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO quizzes (id, title, course_id, lecture_ids, questions, question_count,
                     actual_question_count, created_by, created_at, is_active,
                     avg_questions_per_lecture)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		q.ID, q.Title, q.Course, q.Lectures, questionsJSON, q.QuestionCount,
		q.ActualQuestionCount, q.CreatedBy, q.CreatedAt, q.IsActive,
		q.Metadata.AverageQuestionsPerLecture,
	)
	if err != nil {
		return fmt.Errorf("insert quiz %s: %w", q.ID, err)
	}
	return nil
}

// Get fetches one quiz by id.
func (r *QuizRepo) Get(ctx context.Context, id uuid.UUID) (*models.SavedQuiz, error) {
	row := r.db.Pool.QueryRow(ctx, `
SELECT id, title, course_id, lecture_ids, questions, question_count,
       actual_question_count, created_by, created_at, is_active,
       avg_questions_per_lecture
FROM quizzes
WHERE id = $1`, id)

	var q models.SavedQuiz
	var questionsJSON []byte
	if err := row.Scan(&q.ID, &q.Title, &q.Course, &q.Lectures, &questionsJSON,
		&q.QuestionCount, &q.ActualQuestionCount, &q.CreatedBy, &q.CreatedAt,
		&q.IsActive, &q.Metadata.AverageQuestionsPerLecture); err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	if err := json.Unmarshal(questionsJSON, &q.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions for quiz %s: %w", id, err)
	}
	return &q, nil
}

// ListByCourse returns the active quizzes of a course, newest first.
// Question bodies are omitted from listings.
func (r *QuizRepo) ListByCourse(ctx context.Context, courseID string) ([]models.SavedQuiz, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT id, title, course_id, lecture_ids, question_count, actual_question_count,
       created_by, created_at, is_active, avg_questions_per_lecture
FROM quizzes
WHERE course_id = $1 AND is_active
ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes for course %s: %w", courseID, err)
	}
	defer rows.Close()

	out := make([]models.SavedQuiz, 0, 16)
	for rows.Next() {
		var q models.SavedQuiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Course, &q.Lectures, &q.QuestionCount,
			&q.ActualQuestionCount, &q.CreatedBy, &q.CreatedAt, &q.IsActive,
			&q.Metadata.AverageQuestionsPerLecture); err != nil {
			return nil, fmt.Errorf("scan quiz row: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes for course %s: %w", courseID, err)
	}
	return out, nil
}

// Deactivate soft-deletes a quiz. Returns the number of rows affected so the
// caller can distinguish "not found".
func (r *QuizRepo) Deactivate(ctx context.Context, id uuid.UUID, createdBy uuid.UUID) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE quizzes SET is_active = false
WHERE id = $1 AND created_by = $2`, id, createdBy)
	if err != nil {
		return 0, fmt.Errorf("deactivate quiz %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}
