package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/repository"
	"github.com/examsecure/examsecure-backend/internal/session"
)

// CatalogService resolves exams for session start, enforcing registration.
type CatalogService struct {
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(exams *repository.ExamRepository, questions *repository.QuestionRepository) *CatalogService {
	return &CatalogService{exams: exams, questions: questions}
}

// ExamForStudent loads the exam with its question set, rejecting students
// who are not registered for it.
func (s *CatalogService) ExamForStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Exam, error) {
	registered, err := s.exams.IsParticipant(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		// A missing exam reports not-found, not a registration failure.
		return nil, err
	}
	if !registered {
		return nil, session.ErrNotAuthorized
	}
	exam.Questions, err = s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	return exam, nil
}
