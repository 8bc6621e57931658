package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/examsecure/examsecure-backend/internal/autosave"
	"github.com/examsecure/examsecure-backend/internal/integrity"
	"github.com/examsecure/examsecure-backend/internal/model"
)

// Catalog resolves the exam a student is about to sit, including its
// question set. Implementations enforce registration: a student not
// registered for the exam gets ErrNotAuthorized.
type Catalog interface {
	ExamForStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Exam, error)
}

// AttemptStore persists attempt lifecycle state. FindActive returns
// ErrNotFound when the student has no open attempt for the exam.
type AttemptStore interface {
	FindActive(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error)
	Create(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error)
	HasSubmitted(ctx context.Context, examID uuid.UUID, studentID int) (bool, error)
	Finalize(ctx context.Context, attemptID uuid.UUID, totalScore int, autoSubmitted bool) error
	IncrementWarnings(ctx context.Context, attemptID uuid.UUID) (int, error)
}

// AnswerStore grades and persists answers. Save replaces any prior answer
// for the same question within the attempt.
type AnswerStore interface {
	Save(ctx context.Context, attemptID uuid.UUID, q *model.Question, answerText string) (*model.Answer, error)
	Clear(ctx context.Context, attemptID uuid.UUID, q *model.Question) error
	ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error)
}

// AuditSink records session lifecycle events. Failures are the sink's
// problem; the session logs them and moves on.
type AuditSink interface {
	Record(ctx context.Context, entry model.AuditLog) error
}

// Monitor is the integrity surface a session consumes: a violation stream
// with idempotent lifecycle controls. Close releases the stream for good;
// a closed monitor is never restarted.
type Monitor interface {
	Violations() <-chan integrity.Violation
	StartMonitoring()
	StopMonitoring()
	EnterEnforcedMode()
	ExitEnforcedMode()
	Enforced() bool
	Close()
}

// SnapshotBridge drives periodic resume snapshots for one attempt.
type SnapshotBridge interface {
	Start(ctx context.Context, getter func() (autosave.Snapshot, bool))
	Stop()
	Load(ctx context.Context, attemptID uuid.UUID) (autosave.Snapshot, error)
	Clear(ctx context.Context, attemptID uuid.UUID) error
}
