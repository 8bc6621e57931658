// Package score recomputes attempt totals and per-section breakdowns from
// the persisted answer set. Aggregation is idempotent and order-independent:
// re-running on the same answers always yields the same totals, so it serves
// both live sessions and post-hoc result review.
package score

import (
	"github.com/examsecure/examsecure-backend/internal/model"
)

// SectionSummary holds achieved vs. possible marks for one section.
type SectionSummary struct {
	SectionName    string `json:"section_name"`
	TotalMarks     int    `json:"total_marks"`
	ScoredMarks    int    `json:"scored_marks"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
}

// Summary is the aggregated result of an attempt.
type Summary struct {
	TotalScore     int              `json:"total_score"`
	TotalMarks     int              `json:"total_marks"`
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	Sections       []SectionSummary `json:"sections"`
}

// Percentage returns the achieved score as a 0-100 percentage.
func (s Summary) Percentage() int {
	if s.TotalMarks == 0 {
		return 0
	}
	return (s.TotalScore*100 + s.TotalMarks/2) / s.TotalMarks
}

// Aggregate walks the exam's questions in order, pairs each with its answer
// (by stable id, falling back to positional index), and sums totals per
// section. Questions without a section label fall into "General". Sections
// appear in order of first occurrence so output is deterministic.
func Aggregate(questions []model.Question, answers []model.Answer) Summary {
	summary := Summary{TotalQuestions: len(questions)}

	index := make(map[string]int, 4) // section name -> position in Sections

	for i := range questions {
		q := &questions[i]
		name := q.Section()

		pos, ok := index[name]
		if !ok {
			pos = len(summary.Sections)
			index[name] = pos
			summary.Sections = append(summary.Sections, SectionSummary{SectionName: name})
		}
		sec := &summary.Sections[pos]

		sec.TotalMarks += q.Marks
		sec.TotalQuestions++
		summary.TotalMarks += q.Marks

		ans := findAnswer(answers, q)
		if ans == nil {
			continue
		}
		sec.ScoredMarks += ans.MarksAwarded
		summary.TotalScore += ans.MarksAwarded
		if ans.IsCorrect {
			sec.CorrectAnswers++
			summary.CorrectAnswers++
		}
	}

	return summary
}

func findAnswer(answers []model.Answer, q *model.Question) *model.Answer {
	for i := range answers {
		if answers[i].Matches(q) {
			return &answers[i]
		}
	}
	return nil
}
