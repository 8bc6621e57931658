package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// TrueFalseOptions is the fixed option set for true_false questions.
var TrueFalseOptions = []string{"True", "False"}

// Question represents a single exam question.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	ExamID        uuid.UUID    `json:"exam_id"`
	OrderIndex    int          `json:"order_index"`
	SectionName   string       `json:"section_name,omitempty"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Marks         int          `json:"marks"`
}

// QuestionRef identifies a question within an attempt. The stable question id
// is preferred; the positional index is the fallback for exams loaded from
// snapshots that carry no ids.
type QuestionRef struct {
	ID    uuid.UUID `json:"question_id"`
	Index int       `json:"question_index"`
}

// Ref returns the dual key for this question.
func (q *Question) Ref() QuestionRef {
	return QuestionRef{ID: q.ID, Index: q.OrderIndex}
}

// Section returns the question's section label, defaulting to "General".
func (q *Question) Section() string {
	if q.SectionName == "" {
		return "General"
	}
	return q.SectionName
}

// Question validation errors.
var (
	ErrQuestionNoText        = errors.New("question text is required")
	ErrQuestionBadType       = errors.New("unknown question type")
	ErrQuestionBadMarks      = errors.New("marks must be a positive integer")
	ErrQuestionTooFewOptions = errors.New("multiple_choice requires at least 2 options")
	ErrQuestionBadCorrect    = errors.New("correct answer must match one option verbatim")
)

// Validate checks the authoring invariants for a question.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return ErrQuestionNoText
	}
	if q.Marks <= 0 {
		return ErrQuestionBadMarks
	}

	switch q.QuestionType {
	case QuestionTypeMultipleChoice:
		if len(q.Options) < 2 {
			return ErrQuestionTooFewOptions
		}
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				return nil
			}
		}
		return ErrQuestionBadCorrect
	case QuestionTypeTrueFalse:
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return ErrQuestionBadCorrect
		}
		return nil
	case QuestionTypeShortAnswer:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return ErrQuestionBadCorrect
		}
		return nil
	default:
		return ErrQuestionBadType
	}
}

// DisplayOptions returns the options shown to the student. True/false
// questions always present the fixed pair regardless of stored options.
func (q *Question) DisplayOptions() []string {
	if q.QuestionType == QuestionTypeTrueFalse {
		return TrueFalseOptions
	}
	return q.Options
}

// QuestionInput is the authoring payload for a single question.
type QuestionInput struct {
	SectionName   string   `json:"section_name" binding:"omitempty,max=100"`
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType  string   `json:"question_type" binding:"required,oneof=multiple_choice true_false short_answer"`
	Options       []string `json:"options" binding:"omitempty,dive,max=500"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=500"`
	Marks         int      `json:"marks" binding:"required,min=1"`
}
