package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examsecure/examsecure-backend/internal/middleware"
	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/response"
	"github.com/examsecure/examsecure-backend/internal/service"
	"github.com/examsecure/examsecure-backend/internal/validator"
)

// StudentPortalHandler serves the student's exam list, join flow and
// history. The live exam session itself runs over the WebSocket stream.
type StudentPortalHandler struct {
	examService *service.ExamService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService) *StudentPortalHandler {
	return &StudentPortalHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/student/exams
// The exams this student has joined.
func (h *StudentPortalHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	exams, err := h.examService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Correct answers never leave the server on student routes.
	for i := range exams {
		exams[i].Questions = nil
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// JoinExam godoc
// POST /api/v1/student/exams/join
// Registers the student for the exam behind a join code.
func (h *StudentPortalHandler) JoinExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req model.JoinExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Join(c.Request.Context(), claims.UserID, req.ExamCode)
	if err != nil {
		status, code := response.MapDomainError(err)
		if code == response.ErrNotFound {
			code = response.ErrInvalidExamCode
		}
		response.Fail(c, status, code)
		return
	}

	exam.Questions = nil
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// History godoc
// GET /api/v1/student/history
// The student's submitted attempts with scores.
func (h *StudentPortalHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	history, err := h.examService.HistoryForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	for i := range history {
		history[i].Exam.Questions = nil
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}
