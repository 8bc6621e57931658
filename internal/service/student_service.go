package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/repository"
)

// StudentService handles student account management.
type StudentService struct {
	students *repository.StudentRepository
	auth     *AuthService
	log      zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(students *repository.StudentRepository, auth *AuthService, log zerolog.Logger) *StudentService {
	return &StudentService{
		students: students,
		auth:     auth,
		log:      log.With().Str("component", "student_service").Logger(),
	}
}

// Create registers a new student account with a hashed password.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	student := &model.Student{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	s.log.Info().Int("student_id", student.ID).Msg("Student created")
	return student, nil
}

// Get retrieves one student.
func (s *StudentService) Get(ctx context.Context, id int) (*model.Student, error) {
	return s.students.GetByID(ctx, id)
}

// List retrieves all students.
func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	return s.students.List(ctx)
}
