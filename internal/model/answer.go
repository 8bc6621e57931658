package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is the stored response and graded outcome for one question within
// one attempt. A new submission for the same question replaces the record.
type Answer struct {
	ID            uuid.UUID `json:"id"`
	AttemptID     uuid.UUID `json:"attempt_id"`
	QuestionID    uuid.UUID `json:"question_id"` // uuid.Nil when the exam snapshot carried no id
	QuestionIndex int       `json:"question_index"`
	AnswerText    string    `json:"answer_text"`
	IsCorrect     bool      `json:"is_correct"`
	MarksAwarded  int       `json:"marks_awarded"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Matches reports whether this answer belongs to the given question,
// preferring the stable id and falling back to the positional index.
func (a *Answer) Matches(q *Question) bool {
	if a.QuestionID != uuid.Nil && q.ID != uuid.Nil {
		return a.QuestionID == q.ID
	}
	return a.QuestionIndex == q.OrderIndex
}
