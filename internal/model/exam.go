package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam entity with its ordered question list.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	ExamCode        string     `json:"exam_code"`
	AuthorID        int        `json:"author_id"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalMarks      int        `json:"total_marks"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Questions       []Question `json:"questions,omitempty"`
}

// AvailableAt reports whether the exam can be entered at t: it must be
// active and t must fall inside the validity window (open-ended when a
// bound is missing).
func (e *Exam) AvailableAt(t time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.StartTime != nil && t.Before(*e.StartTime) {
		return false
	}
	if e.EndTime != nil && t.After(*e.EndTime) {
		return false
	}
	return true
}

// ComputeTotalMarks recalculates TotalMarks as the sum of question marks.
func (e *Exam) ComputeTotalMarks() {
	total := 0
	for i := range e.Questions {
		total += e.Questions[i].Marks
	}
	e.TotalMarks = total
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string          `json:"title" binding:"required,min=3,max=255"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,min=1,max=480"`
	StartTime       *time.Time      `json:"start_time" binding:"omitempty"`
	EndTime         *time.Time      `json:"end_time" binding:"omitempty,gtfield=StartTime"`
	Questions       []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title           string          `json:"title" binding:"omitempty,min=3,max=255"`
	DurationMinutes int             `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	StartTime       *time.Time      `json:"start_time" binding:"omitempty"`
	EndTime         *time.Time      `json:"end_time" binding:"omitempty"`
	IsActive        *bool           `json:"is_active" binding:"omitempty"`
	Questions       []QuestionInput `json:"questions" binding:"omitempty,dive"`
}

// JoinExamRequest is the payload for a student entering an exam by code.
type JoinExamRequest struct {
	ExamCode string `json:"exam_code" binding:"required,min=4,max=20"`
}

// QuestionForStudent is a question without the correct answer, as presented
// to a student taking the exam. Options carry the per-attempt display order.
type QuestionForStudent struct {
	ID           uuid.UUID    `json:"id"`
	OrderIndex   int          `json:"order_index"`
	SectionName  string       `json:"section_name,omitempty"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Options      []string     `json:"options,omitempty"`
	Marks        int          `json:"marks"`
}
