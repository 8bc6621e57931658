package response

import (
	"errors"
	"net/http"

	"github.com/examsecure/examsecure-backend/internal/session"
)

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotAvailable ErrCode = "EXAM_NOT_AVAILABLE"
	ErrAlreadyCompleted ErrCode = "ALREADY_COMPLETED"
	ErrInvalidExamCode  ErrCode = "INVALID_EXAM_CODE"
	ErrNotExamAuthor    ErrCode = "NOT_EXAM_AUTHOR"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "This account is already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "One or more fields failed validation."
	case ErrInvalidID:
		return "The provided identifier is not valid."
	case ErrInvalidPayload:
		return "The request payload could not be processed."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "This exam is not available right now."
	case ErrAlreadyCompleted:
		return "You have already completed this exam."
	case ErrInvalidExamCode:
		return "No exam matches that code."
	case ErrNotExamAuthor:
		return "Only the exam's author can perform this action."
	case ErrNoQuestions:
		return "The exam has no questions."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An unexpected error occurred. Please try again later."
	default:
		return "Unknown error."
	}
}

// MapDomainError translates a session error into an HTTP status and error
// code pair. Unrecognized errors come back as 500 INTERNAL_ERROR.
func MapDomainError(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, ErrNotFound
	case errors.Is(err, session.ErrNotAuthorized):
		return http.StatusForbidden, ErrForbidden
	case errors.Is(err, session.ErrNotAvailable):
		return http.StatusConflict, ErrExamNotAvailable
	case errors.Is(err, session.ErrAlreadyCompleted):
		return http.StatusConflict, ErrAlreadyCompleted
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest, ErrInvalidPayload
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}
