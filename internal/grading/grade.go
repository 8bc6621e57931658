// Package grading implements automatic answer grading. Grading is a pure
// function of the question definition and the raw answer text: identical
// input always yields identical output.
package grading

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/examsecure/examsecure-backend/internal/model"
)

// Options tunes the short-answer matching heuristics. The defaults mirror
// the behaviour students were graded under historically; they are options
// rather than constants so a deployment can tighten or relax them.
type Options struct {
	// NumericTolerance is the maximum absolute difference under which two
	// numeric answers are considered equal.
	NumericTolerance float64
	// StripPunctuation enables the second matching tier that removes all
	// non-alphanumeric characters from both sides before comparing.
	StripPunctuation bool
}

// DefaultOptions are the grading heuristics used unless overridden.
var DefaultOptions = Options{
	NumericTolerance: 0.01,
	StripPunctuation: true,
}

// Result is the graded outcome for a single answer.
type Result struct {
	IsCorrect    bool `json:"is_correct"`
	MarksAwarded int  `json:"marks_awarded"`
}

// Grade evaluates a raw answer against a question using DefaultOptions.
func Grade(q *model.Question, rawAnswer string) Result {
	return GradeWith(q, rawAnswer, DefaultOptions)
}

// GradeWith evaluates a raw answer against a question.
//
// Multiple choice and true/false require a trimmed, case-insensitive exact
// match against the canonical correct answer. Short answers are matched in
// tiers: exact, then punctuation-stripped, then numeric within tolerance.
// An empty answer is always incorrect. Full marks or zero; no partial credit.
func GradeWith(q *model.Question, rawAnswer string, opts Options) Result {
	if matches(q, rawAnswer, opts) {
		return Result{IsCorrect: true, MarksAwarded: q.Marks}
	}
	return Result{}
}

func matches(q *model.Question, rawAnswer string, opts Options) bool {
	student := strings.ToLower(strings.TrimSpace(rawAnswer))
	correct := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	if student == "" || correct == "" {
		return false
	}

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		return student == correct

	case model.QuestionTypeShortAnswer:
		// Tier 1: trimmed case-insensitive exact match.
		if student == correct {
			return true
		}

		// Tier 2: tolerate punctuation and spacing differences.
		if opts.StripPunctuation {
			if s, c := stripNonAlnum(student), stripNonAlnum(correct); s != "" && s == c {
				return true
			}
		}

		// Tier 3: numeric answers compare within tolerance.
		sNum, sErr := strconv.ParseFloat(student, 64)
		cNum, cErr := strconv.ParseFloat(correct, 64)
		if sErr == nil && cErr == nil {
			diff := sNum - cNum
			if diff < 0 {
				diff = -diff
			}
			return diff < opts.NumericTolerance
		}
		return false

	default:
		return false
	}
}

// stripNonAlnum removes everything that is not a letter or digit.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
