package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsecure/examsecure-backend/internal/model"
)

// AuditRepository reads the event trail the background workers write.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// ListByExam returns the audit trail for one exam, newest first.
func (r *AuditRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit int) ([]model.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event, student_id, exam_id, attempt_id, outcome, recorded_at
		 FROM audit_logs WHERE exam_id = $1
		 ORDER BY recorded_at DESC LIMIT $2`, examID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.Event, &l.StudentID, &l.ExamID,
			&l.AttemptID, &l.Outcome, &l.RecordedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListViolationsByAttempt returns the persisted integrity events for one
// attempt in report order.
func (r *AuditRepository) ListViolationsByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.IntegrityEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, student_id, exam_id, payload, recorded_at
		 FROM integrity_events WHERE attempt_id = $1
		 ORDER BY recorded_at`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.IntegrityEvent
	for rows.Next() {
		var e model.IntegrityEvent
		if err := rows.Scan(&e.ID, &e.AttemptID, &e.StudentID, &e.ExamID,
			&e.Payload, &e.RecordedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
