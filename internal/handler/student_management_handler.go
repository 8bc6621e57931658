package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/response"
	"github.com/examsecure/examsecure-backend/internal/service"
	"github.com/examsecure/examsecure-backend/internal/validator"
)

// StudentManagementHandler covers the admin's student account endpoints.
type StudentManagementHandler struct {
	studentService *service.StudentService
	authService    *service.AuthService
}

// NewStudentManagementHandler creates a new StudentManagementHandler.
func NewStudentManagementHandler(studentService *service.StudentService, authService *service.AuthService) *StudentManagementHandler {
	return &StudentManagementHandler{studentService: studentService, authService: authService}
}

// Create godoc
// POST /api/v1/admin/students
func (h *StudentManagementHandler) Create(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// List godoc
// GET /api/v1/admin/students
func (h *StudentManagementHandler) List(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ResetSession godoc
// POST /api/v1/admin/students/:student_id/reset-session
// Clears a student's single-device login session so they can sign in again.
func (h *StudentManagementHandler) ResetSession(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil || studentID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetStudentSession(c.Request.Context(), studentID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
