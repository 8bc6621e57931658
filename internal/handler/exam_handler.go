package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examsecure/examsecure-backend/internal/middleware"
	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/repository"
	"github.com/examsecure/examsecure-backend/internal/response"
	"github.com/examsecure/examsecure-backend/internal/service"
	"github.com/examsecure/examsecure-backend/internal/validator"
)

// ExamHandler handles the admin-facing exam authoring and result endpoints.
type ExamHandler struct {
	examService *service.ExamService
	audit       *repository.AuditRepository
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, audit *repository.AuditRepository) *ExamHandler {
	return &ExamHandler{examService: examService, audit: audit}
}

// Create godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// List godoc
// GET /api/v1/admin/exams
func (h *ExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	exams, err := h.examService.ListByAuthor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Get godoc
// GET /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Update godoc
// PUT /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), claims.UserID, examID, &req)
	if err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Delete godoc
// DELETE /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), claims.UserID, examID); err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Results godoc
// GET /api/v1/admin/exams/:exam_id/results
// Submitted attempts for the exam, best score first.
func (h *ExamHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.examService.Results(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// AttemptDetail godoc
// GET /api/v1/admin/attempts/:attempt_id
// Per-section breakdown, stored answers and integrity trail of one attempt.
func (h *ExamHandler) AttemptDetail(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.examService.Detail(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// AuditTrail godoc
// GET /api/v1/admin/exams/:exam_id/audit?limit=100
func (h *ExamHandler) AuditTrail(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	// Ownership check rides on the exam fetch.
	if _, err := h.examService.Get(c.Request.Context(), claims.UserID, examID); err != nil {
		status, code := response.MapDomainError(err)
		response.Fail(c, status, code)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	logs, err := h.audit.ListByExam(c.Request.Context(), examID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"audit": logs})
}
