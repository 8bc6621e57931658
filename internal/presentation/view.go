// Package presentation derives the per-attempt view of an exam's questions:
// shuffled multiple-choice options with a reversible index mapping, bounded
// navigation, and per-question answer status. The view is transient — it is
// rebuilt on every session start or resume and never persisted. Because
// answers always record the selected option's text rather than its display
// position, a re-randomized shuffle on resume never invalidates stored
// answers.
package presentation

import (
	"errors"
	"math/rand"

	"github.com/examsecure/examsecure-backend/internal/model"
)

// Status is the navigation highlight state of one question.
type Status string

const (
	StatusUnattempted Status = "unattempted"
	StatusAnswered    Status = "answered"
	StatusMarked      Status = "marked_for_review"
)

var (
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrNotAnswered     = errors.New("question has no saved answer")
)

// DisplayQuestion is one question as shown to the student. Options holds the
// display order; OriginalIndex maps each display position back to the index
// of that option in the authored question.
type DisplayQuestion struct {
	Question      model.Question
	Options       []string
	OriginalIndex []int
}

// View is the attempt-scoped question ordering and navigation state.
type View struct {
	questions []DisplayQuestion
	statuses  []Status
	current   int
}

// NewView builds a fresh view. Multiple-choice options are shuffled with a
// recorded permutation; true/false and short-answer questions keep their
// fixed presentation.
func NewView(questions []model.Question) *View {
	return newView(questions, rand.Shuffle)
}

// newView accepts the shuffler so tests can use a fixed permutation.
func newView(questions []model.Question, shuffle func(n int, swap func(i, j int))) *View {
	v := &View{
		questions: make([]DisplayQuestion, len(questions)),
		statuses:  make([]Status, len(questions)),
	}

	for i, q := range questions {
		dq := DisplayQuestion{Question: q}

		opts := q.DisplayOptions()
		dq.Options = make([]string, len(opts))
		dq.OriginalIndex = make([]int, len(opts))
		copy(dq.Options, opts)
		for j := range dq.OriginalIndex {
			dq.OriginalIndex[j] = j
		}

		if q.QuestionType == model.QuestionTypeMultipleChoice && len(opts) > 1 {
			shuffle(len(dq.Options), func(a, b int) {
				dq.Options[a], dq.Options[b] = dq.Options[b], dq.Options[a]
				dq.OriginalIndex[a], dq.OriginalIndex[b] = dq.OriginalIndex[b], dq.OriginalIndex[a]
			})
		}

		v.questions[i] = dq
		v.statuses[i] = StatusUnattempted
	}

	return v
}

// Len returns the number of questions in the view.
func (v *View) Len() int { return len(v.questions) }

// CurrentIndex returns the index of the question currently displayed.
func (v *View) CurrentIndex() int { return v.current }

// Current returns the question currently displayed.
func (v *View) Current() *DisplayQuestion {
	if len(v.questions) == 0 {
		return nil
	}
	return &v.questions[v.current]
}

// QuestionAt returns the display question at index.
func (v *View) QuestionAt(index int) (*DisplayQuestion, error) {
	if index < 0 || index >= len(v.questions) {
		return nil, ErrIndexOutOfRange
	}
	return &v.questions[index], nil
}

// Show moves the cursor to index. Out-of-range indices leave the cursor
// unchanged and report the error.
func (v *View) Show(index int) error {
	if index < 0 || index >= len(v.questions) {
		return ErrIndexOutOfRange
	}
	v.current = index
	return nil
}

// Next advances to the following question; a no-op on the last question.
func (v *View) Next() {
	if v.current < len(v.questions)-1 {
		v.current++
	}
}

// Previous steps back one question; a no-op on the first question.
func (v *View) Previous() {
	if v.current > 0 {
		v.current--
	}
}

// Status returns the highlight status of the question at index.
func (v *View) Status(index int) (Status, error) {
	if index < 0 || index >= len(v.statuses) {
		return "", ErrIndexOutOfRange
	}
	return v.statuses[index], nil
}

// Statuses returns a copy of all question statuses in order.
func (v *View) Statuses() []Status {
	out := make([]Status, len(v.statuses))
	copy(out, v.statuses)
	return out
}

// SetAnswered records whether the question at index has a saved answer.
// Answering clears a mark-for-review flag; clearing an answer reverts the
// question to unattempted.
func (v *View) SetAnswered(index int, answered bool) error {
	if index < 0 || index >= len(v.statuses) {
		return ErrIndexOutOfRange
	}
	if answered {
		v.statuses[index] = StatusAnswered
	} else {
		v.statuses[index] = StatusUnattempted
	}
	return nil
}

// MarkForReview flags an already-answered question for review. Unanswered
// questions cannot be marked.
func (v *View) MarkForReview(index int) error {
	if index < 0 || index >= len(v.statuses) {
		return ErrIndexOutOfRange
	}
	if v.statuses[index] == StatusUnattempted {
		return ErrNotAnswered
	}
	v.statuses[index] = StatusMarked
	return nil
}

// FirstUnanswered returns the index of the first question without a saved
// answer, or -1 when every question is answered.
func (v *View) FirstUnanswered() int {
	for i, s := range v.statuses {
		if s == StatusUnattempted {
			return i
		}
	}
	return -1
}

// ForStudent renders the view as the wire payload sent to the student,
// without correct answers.
func (v *View) ForStudent() []model.QuestionForStudent {
	out := make([]model.QuestionForStudent, len(v.questions))
	for i, dq := range v.questions {
		out[i] = model.QuestionForStudent{
			ID:           dq.Question.ID,
			OrderIndex:   dq.Question.OrderIndex,
			SectionName:  dq.Question.SectionName,
			QuestionText: dq.Question.QuestionText,
			QuestionType: dq.Question.QuestionType,
			Options:      dq.Options,
			Marks:        dq.Question.Marks,
		}
	}
	return out
}
