package score

import (
	"reflect"
	"testing"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/google/uuid"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{ID: uuid.New(), OrderIndex: 0, SectionName: "Arithmetic", Marks: 2},
		{ID: uuid.New(), OrderIndex: 1, SectionName: "Arithmetic", Marks: 3},
		{ID: uuid.New(), OrderIndex: 2, SectionName: "Geometry", Marks: 5},
		{ID: uuid.New(), OrderIndex: 3, Marks: 1}, // no section -> General
	}
}

func TestAggregate_SectionTotals(t *testing.T) {
	qs := sampleQuestions()
	answers := []model.Answer{
		{QuestionID: qs[0].ID, QuestionIndex: 0, IsCorrect: true, MarksAwarded: 2},
		{QuestionID: qs[1].ID, QuestionIndex: 1, IsCorrect: false, MarksAwarded: 0},
		{QuestionID: qs[2].ID, QuestionIndex: 2, IsCorrect: true, MarksAwarded: 5},
	}

	got := Aggregate(qs, answers)

	if got.TotalScore != 7 || got.TotalMarks != 11 {
		t.Fatalf("total = %d/%d, want 7/11", got.TotalScore, got.TotalMarks)
	}
	if got.CorrectAnswers != 2 || got.TotalQuestions != 4 {
		t.Fatalf("correct/questions = %d/%d, want 2/4", got.CorrectAnswers, got.TotalQuestions)
	}

	want := []SectionSummary{
		{SectionName: "Arithmetic", TotalMarks: 5, ScoredMarks: 2, TotalQuestions: 2, CorrectAnswers: 1},
		{SectionName: "Geometry", TotalMarks: 5, ScoredMarks: 5, TotalQuestions: 1, CorrectAnswers: 1},
		{SectionName: "General", TotalMarks: 1, ScoredMarks: 0, TotalQuestions: 1, CorrectAnswers: 0},
	}
	if !reflect.DeepEqual(got.Sections, want) {
		t.Errorf("sections = %+v, want %+v", got.Sections, want)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	qs := sampleQuestions()
	answers := []model.Answer{
		{QuestionID: qs[0].ID, QuestionIndex: 0, IsCorrect: true, MarksAwarded: 2},
		{QuestionID: qs[3].ID, QuestionIndex: 3, IsCorrect: true, MarksAwarded: 1},
	}

	first := Aggregate(qs, answers)
	second := Aggregate(qs, answers)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation not idempotent: %+v vs %+v", first, second)
	}

	// Answer ordering must not affect totals.
	reversed := []model.Answer{answers[1], answers[0]}
	third := Aggregate(qs, reversed)
	if !reflect.DeepEqual(first, third) {
		t.Errorf("aggregation order-dependent: %+v vs %+v", first, third)
	}
}

func TestAggregate_IndexFallback(t *testing.T) {
	// Questions loaded from a snapshot without ids still pair with answers
	// recorded by positional index.
	qs := []model.Question{
		{OrderIndex: 0, Marks: 2},
		{OrderIndex: 1, Marks: 3},
	}
	answers := []model.Answer{
		{QuestionIndex: 1, IsCorrect: true, MarksAwarded: 3},
	}

	got := Aggregate(qs, answers)
	if got.TotalScore != 3 {
		t.Errorf("total score = %d, want 3", got.TotalScore)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, nil)
	if got.TotalScore != 0 || got.TotalMarks != 0 || len(got.Sections) != 0 {
		t.Errorf("empty aggregate = %+v, want zero value", got)
	}
	if got.Percentage() != 0 {
		t.Errorf("empty percentage = %d, want 0", got.Percentage())
	}
}

func TestSummary_Percentage(t *testing.T) {
	s := Summary{TotalScore: 5, TotalMarks: 5}
	if s.Percentage() != 100 {
		t.Errorf("5/5 = %d%%, want 100", s.Percentage())
	}
	s = Summary{TotalScore: 2, TotalMarks: 5}
	if s.Percentage() != 40 {
		t.Errorf("2/5 = %d%%, want 40", s.Percentage())
	}
}
