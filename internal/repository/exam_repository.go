package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/session"
)

// ExamRepository handles exam and participant data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, exam_code, author_id, duration_minutes, total_marks,
	        start_time, end_time, is_active, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.ExamCode, &e.AuthorID, &e.DurationMinutes,
		&e.TotalMarks, &e.StartTime, &e.EndTime, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts an exam together with its question list in one transaction.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (title, exam_code, author_id, duration_minutes, total_marks,
		                    start_time, end_time, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.ExamCode, e.AuthorID, e.DurationMinutes, e.TotalMarks,
		e.StartTime, e.EndTime, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuestions(ctx, tx, e.ID, e.Questions); err != nil {
		return err
	}
	for i := range e.Questions {
		e.Questions[i].ExamID = e.ID
	}
	return tx.Commit(ctx)
}

// Update rewrites the exam row. When replaceQuestions is set, the question
// list is replaced wholesale inside the same transaction.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam, replaceQuestions bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE exams
		 SET title = $1, duration_minutes = $2, total_marks = $3,
		     start_time = $4, end_time = $5, is_active = $6, updated_at = NOW()
		 WHERE id = $7`,
		e.Title, e.DurationMinutes, e.TotalMarks, e.StartTime, e.EndTime, e.IsActive, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}

	if replaceQuestions {
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE exam_id = $1`, e.ID); err != nil {
			return err
		}
		if err := insertQuestions(ctx, tx, e.ID, e.Questions); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func insertQuestions(ctx context.Context, tx pgx.Tx, examID uuid.UUID, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		rows = append(rows, []interface{}{
			examID, q.OrderIndex, q.SectionName, q.QuestionText,
			q.QuestionType, q.Options, q.CorrectAnswer, q.Marks,
		})
	}
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"questions"},
		[]string{"exam_id", "order_index", "section_name", "question_text",
			"question_type", "options", "correct_answer", "marks"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

// GetByID retrieves an exam without its questions.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// GetByIDWithQuestions retrieves an exam and its ordered question list.
func (r *ExamRepository) GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := listQuestions(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	e.Questions = questions
	return e, nil
}

// GetByCode retrieves an exam by its join code.
func (r *ExamRepository) GetByCode(ctx context.Context, code string) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE exam_code = $1`, code))
}

// ListByAuthor retrieves all exams created by an admin, newest first.
func (r *ExamRepository) ListByAuthor(ctx context.Context, authorID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// ListForStudent retrieves the exams a student is registered for.
func (r *ExamRepository) ListForStudent(ctx context.Context, studentID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.title, e.exam_code, e.author_id, e.duration_minutes, e.total_marks,
		        e.start_time, e.end_time, e.is_active, e.created_at, e.updated_at
		 FROM exams e
		 JOIN exam_participants p ON p.exam_id = e.id
		 WHERE p.student_id = $1
		 ORDER BY e.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.ExamCode, &e.AuthorID, &e.DurationMinutes,
			&e.TotalMarks, &e.StartTime, &e.EndTime, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Delete removes an exam; questions, participants and attempts cascade.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// AddParticipant registers a student for an exam. Re-joining is a no-op.
func (r *ExamRepository) AddParticipant(ctx context.Context, examID uuid.UUID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_participants (exam_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (exam_id, student_id) DO NOTHING`,
		examID, studentID)
	return err
}

// IsParticipant reports whether the student is registered for the exam.
func (r *ExamRepository) IsParticipant(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM exam_participants WHERE exam_id = $1 AND student_id = $2
		 )`, examID, studentID).Scan(&exists)
	return exists, err
}
