package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/session"
)

// AttemptRepository handles attempt lifecycle persistence. A partial unique
// index on (exam_id, student_id) WHERE NOT submitted enforces the
// one-open-attempt rule at the storage layer.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, exam_id, student_id, start_time, end_time,
	        total_score, submitted, auto_submitted, warning_count`

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.StartTime, &a.EndTime,
		&a.TotalScore, &a.Submitted, &a.AutoSubmitted, &a.WarningCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// FindActive returns the student's open attempt for the exam.
func (r *AttemptRepository) FindActive(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND NOT submitted`,
		examID, studentID))
}

// Create opens a new attempt. If a concurrent request already opened one,
// the unique index fires and the existing attempt is returned instead.
func (r *AttemptRepository) Create(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	a, err := scanAttempt(r.pool.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (exam_id, student_id) WHERE NOT submitted DO NOTHING
		 RETURNING `+attemptColumns,
		examID, studentID))
	if err == nil {
		return a, nil
	}
	if errors.Is(err, session.ErrNotFound) {
		// Conflict path: the open attempt already exists.
		return r.FindActive(ctx, examID, studentID)
	}
	return nil, err
}

// GetByID retrieves one attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// HasSubmitted reports whether the student has a completed attempt for the
// exam.
func (r *AttemptRepository) HasSubmitted(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM attempts
		    WHERE exam_id = $1 AND student_id = $2 AND submitted
		 )`, examID, studentID).Scan(&exists)
	return exists, err
}

// Finalize marks the attempt submitted with its final score. Finalizing an
// already-submitted attempt is a no-op so retries stay safe.
func (r *AttemptRepository) Finalize(ctx context.Context, attemptID uuid.UUID, totalScore int, autoSubmitted bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET submitted = TRUE, auto_submitted = $1, total_score = $2, end_time = NOW()
		 WHERE id = $3 AND NOT submitted`,
		autoSubmitted, totalScore, attemptID)
	return err
}

// IncrementWarnings bumps the integrity warning counter and returns the new
// value.
func (r *AttemptRepository) IncrementWarnings(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE attempts SET warning_count = warning_count + 1
		 WHERE id = $1
		 RETURNING warning_count`, attemptID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, session.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// ListByStudent returns a student's attempts across all exams, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts WHERE student_id = $1
		 ORDER BY start_time DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.StartTime, &a.EndTime,
			&a.TotalScore, &a.Submitted, &a.AutoSubmitted, &a.WarningCount); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ListResultsByExam returns submitted attempts for an exam joined with
// student identity, for the author's result view.
func (r *AttemptRepository) ListResultsByExam(ctx context.Context, examID uuid.UUID) ([]model.AttemptResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.student_id, s.name, s.email, a.total_score,
		        a.submitted, a.auto_submitted, a.warning_count, a.start_time, a.end_time
		 FROM attempts a
		 JOIN students s ON s.id = a.student_id
		 WHERE a.exam_id = $1 AND a.submitted
		 ORDER BY a.total_score DESC, a.end_time ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.AttemptResult
	for rows.Next() {
		var res model.AttemptResult
		if err := rows.Scan(&res.AttemptID, &res.StudentID, &res.StudentName, &res.StudentEmail,
			&res.TotalScore, &res.Submitted, &res.AutoSubmitted, &res.WarningCount,
			&res.StartTime, &res.EndTime); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
