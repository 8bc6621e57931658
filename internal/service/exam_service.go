package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/repository"
	"github.com/examsecure/examsecure-backend/internal/score"
	"github.com/examsecure/examsecure-backend/internal/session"
)

// ExamService covers exam authoring, join-by-code and result review.
type ExamService struct {
	exams    *repository.ExamRepository
	attempts *repository.AttemptRepository
	answers  *repository.AnswerRepository
	audit    *repository.AuditRepository
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	exams *repository.ExamRepository,
	attempts *repository.AttemptRepository,
	answers *repository.AnswerRepository,
	audit *repository.AuditRepository,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:    exams,
		attempts: attempts,
		answers:  answers,
		audit:    audit,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// codeAlphabet avoids ambiguous characters in join codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateExamCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate exam code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func questionsFromInputs(inputs []model.QuestionInput) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		q := model.Question{
			OrderIndex:    i,
			SectionName:   in.SectionName,
			QuestionText:  in.QuestionText,
			QuestionType:  model.QuestionType(in.QuestionType),
			Options:       in.Options,
			CorrectAnswer: in.CorrectAnswer,
			Marks:         in.Marks,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Create builds a new exam from the authoring payload. The join code is
// generated server-side; a rare collision is retried.
func (s *ExamService) Create(ctx context.Context, authorID int, req *model.CreateExamRequest) (*model.Exam, error) {
	questions, err := questionsFromInputs(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", session.ErrInvalidInput, err)
	}

	exam := &model.Exam{
		Title:           req.Title,
		AuthorID:        authorID,
		DurationMinutes: req.DurationMinutes,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IsActive:        true,
		Questions:       questions,
	}
	exam.ComputeTotalMarks()

	for attempt := 0; attempt < 3; attempt++ {
		exam.ExamCode, err = generateExamCode()
		if err != nil {
			return nil, err
		}
		if err = s.exams.Create(ctx, exam); err == nil {
			s.log.Info().
				Str("exam_id", exam.ID.String()).
				Str("exam_code", exam.ExamCode).
				Int("questions", len(exam.Questions)).
				Msg("Exam created")
			return exam, nil
		}
	}
	return nil, err
}

// Update applies an authoring change to the author's own exam.
func (s *ExamService) Update(ctx context.Context, authorID int, examID uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.ownedExam(ctx, authorID, examID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.StartTime != nil {
		exam.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = req.EndTime
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	replaceQuestions := len(req.Questions) > 0
	if replaceQuestions {
		questions, err := questionsFromInputs(req.Questions)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", session.ErrInvalidInput, err)
		}
		exam.Questions = questions
		exam.ComputeTotalMarks()
	}

	if err := s.exams.Update(ctx, exam, replaceQuestions); err != nil {
		return nil, err
	}
	return exam, nil
}

// Delete removes the author's exam and everything hanging off it.
func (s *ExamService) Delete(ctx context.Context, authorID int, examID uuid.UUID) error {
	if _, err := s.ownedExam(ctx, authorID, examID); err != nil {
		return err
	}
	return s.exams.Delete(ctx, examID)
}

// Get returns the author's exam with its questions, correct answers
// included.
func (s *ExamService) Get(ctx context.Context, authorID int, examID uuid.UUID) (*model.Exam, error) {
	if _, err := s.ownedExam(ctx, authorID, examID); err != nil {
		return nil, err
	}
	return s.exams.GetByIDWithQuestions(ctx, examID)
}

// ListByAuthor returns every exam the admin created.
func (s *ExamService) ListByAuthor(ctx context.Context, authorID int) ([]model.Exam, error) {
	return s.exams.ListByAuthor(ctx, authorID)
}

// Join registers a student for the exam behind a join code.
func (s *ExamService) Join(ctx context.Context, studentID int, code string) (*model.Exam, error) {
	exam, err := s.exams.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive {
		return nil, session.ErrNotAvailable
	}
	if err := s.exams.AddParticipant(ctx, exam.ID, studentID); err != nil {
		return nil, err
	}
	return exam, nil
}

// ListForStudent returns the exams a student has joined.
func (s *ExamService) ListForStudent(ctx context.Context, studentID int) ([]model.Exam, error) {
	return s.exams.ListForStudent(ctx, studentID)
}

// Results returns the submitted attempts for the author's exam, best score
// first.
func (s *ExamService) Results(ctx context.Context, authorID int, examID uuid.UUID) ([]model.AttemptResult, error) {
	if _, err := s.ownedExam(ctx, authorID, examID); err != nil {
		return nil, err
	}
	return s.attempts.ListResultsByExam(ctx, examID)
}

// AttemptDetail is the per-attempt drill-down for the exam author: the
// recomputed section breakdown plus the integrity trail.
type AttemptDetail struct {
	Attempt    model.Attempt          `json:"attempt"`
	Summary    score.Summary          `json:"summary"`
	Answers    []model.Answer         `json:"answers"`
	Violations []model.IntegrityEvent `json:"violations"`
}

// Detail rebuilds one attempt's outcome from its stored answers. Because
// aggregation is a pure recomputation, the detail view always agrees with
// the persisted total even if it is generated long after submission.
func (s *ExamService) Detail(ctx context.Context, authorID int, attemptID uuid.UUID) (*AttemptDetail, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedExam(ctx, authorID, attempt.ExamID); err != nil {
		return nil, err
	}

	full, err := s.exams.GetByIDWithQuestions(ctx, attempt.ExamID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	violations, err := s.audit.ListViolationsByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	return &AttemptDetail{
		Attempt:    *attempt,
		Summary:    score.Aggregate(full.Questions, answers),
		Answers:    answers,
		Violations: violations,
	}, nil
}

// StudentHistory pairs a student's attempts with their exams' titles.
type StudentHistory struct {
	Attempt model.Attempt `json:"attempt"`
	Exam    model.Exam    `json:"exam"`
}

// HistoryForStudent returns the student's own submitted attempts with
// scores. Open attempts are excluded; an unfinished exam is resumed, not
// reviewed.
func (s *ExamService) HistoryForStudent(ctx context.Context, studentID int) ([]StudentHistory, error) {
	attempts, err := s.attempts.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	history := make([]StudentHistory, 0, len(attempts))
	for _, a := range attempts {
		if !a.Submitted {
			continue
		}
		exam, err := s.exams.GetByID(ctx, a.ExamID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				continue
			}
			return nil, err
		}
		history = append(history, StudentHistory{Attempt: a, Exam: *exam})
	}
	return history, nil
}

func (s *ExamService) ownedExam(ctx context.Context, authorID int, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != authorID {
		return nil, session.ErrNotAuthorized
	}
	return exam, nil
}
