package presentation

import (
	"testing"

	"github.com/examsecure/examsecure-backend/internal/model"
)

func mcQuestion(text string, options []string, correct string) model.Question {
	return model.Question{
		QuestionText:  text,
		QuestionType:  model.QuestionTypeMultipleChoice,
		Options:       options,
		CorrectAnswer: correct,
		Marks:         1,
	}
}

func TestNewView_ShufflePermutation(t *testing.T) {
	q := mcQuestion("capital of France?", []string{"Paris", "London", "Berlin", "Madrid"}, "Paris")

	// Reverse the option order deterministically.
	reverse := func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
	v := newView([]model.Question{q}, reverse)

	dq := v.Current()
	want := []string{"Madrid", "Berlin", "London", "Paris"}
	for i, opt := range dq.Options {
		if opt != want[i] {
			t.Fatalf("option[%d] = %q, want %q", i, opt, want[i])
		}
	}
	// Every display position must map back to the authored option.
	for pos, orig := range dq.OriginalIndex {
		if dq.Options[pos] != q.Options[orig] {
			t.Errorf("position %d maps to original %d (%q), display shows %q",
				pos, orig, q.Options[orig], dq.Options[pos])
		}
	}
}

func TestNewView_ShuffleKeepsAllOptions(t *testing.T) {
	q := mcQuestion("pick one", []string{"a", "b", "c", "d", "e"}, "a")
	v := NewView([]model.Question{q})

	seen := map[string]bool{}
	for _, opt := range v.Current().Options {
		seen[opt] = true
	}
	for _, opt := range q.Options {
		if !seen[opt] {
			t.Errorf("option %q missing from shuffled view", opt)
		}
	}
}

func TestNewView_TrueFalseNotShuffled(t *testing.T) {
	q := model.Question{
		QuestionText:  "the sky is blue",
		QuestionType:  model.QuestionTypeTrueFalse,
		CorrectAnswer: "true",
		Marks:         1,
	}
	for i := 0; i < 20; i++ {
		v := NewView([]model.Question{q})
		opts := v.Current().Options
		if len(opts) != 2 || opts[0] != "True" || opts[1] != "False" {
			t.Fatalf("true/false options = %v, want fixed [True False]", opts)
		}
	}
}

func TestView_Navigation(t *testing.T) {
	qs := []model.Question{
		mcQuestion("q1", []string{"a", "b"}, "a"),
		mcQuestion("q2", []string{"a", "b"}, "a"),
		mcQuestion("q3", []string{"a", "b"}, "a"),
	}
	v := NewView(qs)

	v.Previous()
	if v.CurrentIndex() != 0 {
		t.Errorf("Previous at first question moved cursor to %d", v.CurrentIndex())
	}

	v.Next()
	v.Next()
	if v.CurrentIndex() != 2 {
		t.Fatalf("cursor = %d, want 2", v.CurrentIndex())
	}
	v.Next()
	if v.CurrentIndex() != 2 {
		t.Errorf("Next at last question moved cursor to %d", v.CurrentIndex())
	}

	if err := v.Show(1); err != nil {
		t.Fatalf("Show(1): %v", err)
	}
	if err := v.Show(7); err != ErrIndexOutOfRange {
		t.Errorf("Show(7) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := v.Show(-1); err != ErrIndexOutOfRange {
		t.Errorf("Show(-1) error = %v, want ErrIndexOutOfRange", err)
	}
	if v.CurrentIndex() != 1 {
		t.Errorf("out-of-range Show moved cursor to %d", v.CurrentIndex())
	}
}

func TestView_StatusTransitions(t *testing.T) {
	qs := []model.Question{
		mcQuestion("q1", []string{"a", "b"}, "a"),
		mcQuestion("q2", []string{"a", "b"}, "a"),
	}
	v := NewView(qs)

	if err := v.MarkForReview(0); err != ErrNotAnswered {
		t.Fatalf("marking unanswered question: err = %v, want ErrNotAnswered", err)
	}

	if err := v.SetAnswered(0, true); err != nil {
		t.Fatalf("SetAnswered: %v", err)
	}
	if s, _ := v.Status(0); s != StatusAnswered {
		t.Errorf("status = %v, want answered", s)
	}

	if err := v.MarkForReview(0); err != nil {
		t.Fatalf("MarkForReview: %v", err)
	}
	if s, _ := v.Status(0); s != StatusMarked {
		t.Errorf("status = %v, want marked_for_review", s)
	}

	// Re-answering a marked question clears the flag.
	v.SetAnswered(0, true)
	if s, _ := v.Status(0); s != StatusAnswered {
		t.Errorf("status after re-answer = %v, want answered", s)
	}

	// Clearing the answer reverts to unattempted.
	v.SetAnswered(0, false)
	if s, _ := v.Status(0); s != StatusUnattempted {
		t.Errorf("status after clear = %v, want unattempted", s)
	}
}

func TestView_FirstUnanswered(t *testing.T) {
	qs := []model.Question{
		mcQuestion("q1", []string{"a", "b"}, "a"),
		mcQuestion("q2", []string{"a", "b"}, "a"),
		mcQuestion("q3", []string{"a", "b"}, "a"),
	}
	v := NewView(qs)

	if got := v.FirstUnanswered(); got != 0 {
		t.Errorf("FirstUnanswered = %d, want 0", got)
	}
	v.SetAnswered(0, true)
	v.SetAnswered(2, true)
	if got := v.FirstUnanswered(); got != 1 {
		t.Errorf("FirstUnanswered = %d, want 1", got)
	}
	v.SetAnswered(1, true)
	if got := v.FirstUnanswered(); got != -1 {
		t.Errorf("FirstUnanswered = %d, want -1 when all answered", got)
	}
}

func TestView_ForStudentOmitsCorrectAnswer(t *testing.T) {
	qs := []model.Question{mcQuestion("q1", []string{"a", "b", "c"}, "b")}
	v := NewView(qs)

	out := v.ForStudent()
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if len(out[0].Options) != 3 {
		t.Errorf("options = %v, want 3 entries", out[0].Options)
	}
	if out[0].QuestionText != "q1" {
		t.Errorf("text = %q", out[0].QuestionText)
	}
}
