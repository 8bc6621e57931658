package grading

import (
	"testing"

	"github.com/examsecure/examsecure-backend/internal/model"
)

func mcQuestion(correct string, marks int) *model.Question {
	return &model.Question{
		QuestionType:  model.QuestionTypeMultipleChoice,
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: correct,
		Marks:         marks,
	}
}

func shortAnswer(correct string, marks int) *model.Question {
	return &model.Question{
		QuestionType:  model.QuestionTypeShortAnswer,
		CorrectAnswer: correct,
		Marks:         marks,
	}
}

func TestGrade_MultipleChoice(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		answer  string
		want    bool
		marks   int
	}{
		{name: "exact match", correct: "4", answer: "4", want: true, marks: 2},
		{name: "wrong option", correct: "4", answer: "5", want: false, marks: 0},
		{name: "case insensitive", correct: "Paris", answer: "paris", want: true, marks: 2},
		{name: "surrounding whitespace", correct: "4", answer: "  4  ", want: true, marks: 2},
		{name: "empty answer", correct: "4", answer: "", want: false, marks: 0},
		{name: "whitespace only", correct: "4", answer: "   ", want: false, marks: 0},
		{name: "no substring match", correct: "4", answer: "42", want: false, marks: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := mcQuestion(tc.correct, 2)
			got := Grade(q, tc.answer)
			if got.IsCorrect != tc.want || got.MarksAwarded != tc.marks {
				t.Errorf("Grade(%q, %q) = %+v, want correct=%v marks=%d",
					tc.correct, tc.answer, got, tc.want, tc.marks)
			}
		})
	}
}

func TestGrade_TrueFalse(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.QuestionTypeTrueFalse,
		CorrectAnswer: "True",
		Marks:         1,
	}

	if got := Grade(q, "true"); !got.IsCorrect || got.MarksAwarded != 1 {
		t.Errorf("lowercase true should match: %+v", got)
	}
	if got := Grade(q, "False"); got.IsCorrect {
		t.Errorf("False should not match True: %+v", got)
	}
}

func TestGrade_ShortAnswerTiers(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		answer  string
		want    bool
	}{
		{name: "exact", correct: "mitochondria", answer: "Mitochondria", want: true},
		{name: "punctuation stripped", correct: "πr²", answer: "π r²", want: true},
		{name: "hyphenation difference", correct: "twenty-one", answer: "twenty one", want: true},
		{name: "numeric within tolerance", correct: "3", answer: "3.00", want: true},
		{name: "numeric near boundary", correct: "3", answer: "3.005", want: true},
		{name: "numeric outside tolerance", correct: "3", answer: "3.02", want: false},
		{name: "non-numeric mismatch", correct: "oxygen", answer: "hydrogen", want: false},
		{name: "empty", correct: "oxygen", answer: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := shortAnswer(tc.correct, 3)
			got := Grade(q, tc.answer)
			if got.IsCorrect != tc.want {
				t.Errorf("Grade(%q, %q).IsCorrect = %v, want %v",
					tc.correct, tc.answer, got.IsCorrect, tc.want)
			}
			wantMarks := 0
			if tc.want {
				wantMarks = 3
			}
			if got.MarksAwarded != wantMarks {
				t.Errorf("marks = %d, want %d", got.MarksAwarded, wantMarks)
			}
		})
	}
}

func TestGrade_Idempotent(t *testing.T) {
	questions := []*model.Question{
		mcQuestion("4", 2),
		shortAnswer("3.14", 5),
		{QuestionType: model.QuestionTypeTrueFalse, CorrectAnswer: "False", Marks: 1},
	}
	answers := []string{"", "4", "3.14", "3.139", "false", "nonsense"}

	for _, q := range questions {
		for _, a := range answers {
			first := Grade(q, a)
			second := Grade(q, a)
			if first != second {
				t.Errorf("Grade(%v, %q) not idempotent: %+v vs %+v", q.QuestionType, a, first, second)
			}
		}
	}
}

func TestGradeWith_CustomTolerance(t *testing.T) {
	q := shortAnswer("10", 1)
	opts := Options{NumericTolerance: 0.5, StripPunctuation: true}

	if got := GradeWith(q, "10.3", opts); !got.IsCorrect {
		t.Errorf("10.3 should match 10 with tolerance 0.5: %+v", got)
	}
	if got := GradeWith(q, "10.3", DefaultOptions); got.IsCorrect {
		t.Errorf("10.3 should not match 10 with default tolerance: %+v", got)
	}
}
