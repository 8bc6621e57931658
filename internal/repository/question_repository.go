package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsecure/examsecure-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listQuestions(ctx context.Context, q querier, examID uuid.UUID) ([]model.Question, error) {
	rows, err := q.Query(ctx,
		`SELECT id, exam_id, order_index, section_name, question_text,
		        question_type, options, correct_answer, marks
		 FROM questions WHERE exam_id = $1
		 ORDER BY order_index`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.OrderIndex, &q.SectionName,
			&q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer, &q.Marks); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListByExam retrieves all questions for an exam in presentation order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	return listQuestions(ctx, r.pool, examID)
}
