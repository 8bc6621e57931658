package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt represents one student's instance of taking one exam.
// At most one non-submitted attempt exists per (exam, student) pair.
type Attempt struct {
	ID            uuid.UUID  `json:"id"`
	ExamID        uuid.UUID  `json:"exam_id"`
	StudentID     int        `json:"student_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	TotalScore    int        `json:"total_score"`
	Submitted     bool       `json:"submitted"`
	AutoSubmitted bool       `json:"auto_submitted"`
	WarningCount  int        `json:"warning_count"`
}

// AttemptResult combines student identity with attempt outcome for
// admin-facing result listings.
type AttemptResult struct {
	AttemptID     uuid.UUID  `json:"attempt_id"`
	StudentID     int        `json:"student_id"`
	StudentName   string     `json:"student_name"`
	StudentEmail  string     `json:"student_email"`
	TotalScore    int        `json:"total_score"`
	Submitted     bool       `json:"submitted"`
	AutoSubmitted bool       `json:"auto_submitted"`
	WarningCount  int        `json:"warning_count"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}
