package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsecure/examsecure-backend/internal/grading"
	"github.com/examsecure/examsecure-backend/internal/model"
)

// AnswerRepository grades and persists answers. Saving is an upsert on
// (attempt_id, question_index), so re-answering a question replaces the
// earlier record and grading stays idempotent.
type AnswerRepository struct {
	pool *pgxpool.Pool
	opts grading.Options
}

// NewAnswerRepository creates a new AnswerRepository using the default
// grading heuristics.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool, opts: grading.DefaultOptions}
}

// NewAnswerRepositoryWith allows custom grading options.
func NewAnswerRepositoryWith(pool *pgxpool.Pool, opts grading.Options) *AnswerRepository {
	return &AnswerRepository{pool: pool, opts: opts}
}

// Save grades answerText against the question and upserts the result.
func (r *AnswerRepository) Save(ctx context.Context, attemptID uuid.UUID, q *model.Question, answerText string) (*model.Answer, error) {
	res := grading.GradeWith(q, answerText, r.opts)

	var questionID any
	if q.ID != uuid.Nil {
		questionID = q.ID
	}

	a := &model.Answer{
		AttemptID:     attemptID,
		QuestionID:    q.ID,
		QuestionIndex: q.OrderIndex,
		AnswerText:    answerText,
		IsCorrect:     res.IsCorrect,
		MarksAwarded:  res.MarksAwarded,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO answers (attempt_id, question_id, question_index, answer_text, is_correct, marks_awarded)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (attempt_id, question_index)
		 DO UPDATE SET question_id = EXCLUDED.question_id,
		               answer_text = EXCLUDED.answer_text,
		               is_correct = EXCLUDED.is_correct,
		               marks_awarded = EXCLUDED.marks_awarded,
		               updated_at = NOW()
		 RETURNING id, updated_at`,
		attemptID, questionID, q.OrderIndex, answerText, res.IsCorrect, res.MarksAwarded,
	).Scan(&a.ID, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Clear removes the stored answer for a question within an attempt. Clearing
// an unanswered question is a no-op.
func (r *AnswerRepository) Clear(ctx context.Context, attemptID uuid.UUID, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM answers WHERE attempt_id = $1 AND question_index = $2`,
		attemptID, q.OrderIndex)
	return err
}

// ListByAttempt returns all stored answers for an attempt.
func (r *AnswerRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, COALESCE(question_id, '00000000-0000-0000-0000-000000000000'::uuid),
		        question_index, answer_text, is_correct, marks_awarded, updated_at
		 FROM answers WHERE attempt_id = $1
		 ORDER BY question_index`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.QuestionIndex,
			&a.AnswerText, &a.IsCorrect, &a.MarksAwarded, &a.UpdatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
