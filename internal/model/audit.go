package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent names for session lifecycle logging.
const (
	AuditEventStartExam  = "start_exam"
	AuditEventSubmitExam = "submit_exam"
)

// AuditLog records a session lifecycle event with minimal metadata.
type AuditLog struct {
	ID         int64     `json:"id"`
	Event      string    `json:"event"`
	StudentID  int       `json:"student_id"`
	ExamID     uuid.UUID `json:"exam_id"`
	AttemptID  uuid.UUID `json:"attempt_id"`
	Outcome    string    `json:"outcome,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// IntegrityEvent is a persisted integrity violation report. What constitutes
// a violation is decided entirely by the external monitor.
type IntegrityEvent struct {
	ID         int64     `json:"id"`
	AttemptID  uuid.UUID `json:"attempt_id"`
	StudentID  int       `json:"student_id"`
	ExamID     uuid.UUID `json:"exam_id"`
	Payload    string    `json:"payload"`
	RecordedAt time.Time `json:"recorded_at"`
}
