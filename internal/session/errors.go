package session

import "errors"

// Domain errors surfaced by session operations. Handlers map these onto
// HTTP and WebSocket error codes.
var (
	// ErrNotFound means the referenced exam, attempt or question does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized means the student is not registered for the exam.
	ErrNotAuthorized = errors.New("not authorized for this exam")

	// ErrNotAvailable means the exam is inactive or outside its scheduled
	// window.
	ErrNotAvailable = errors.New("exam not available")

	// ErrAlreadyCompleted means the student already submitted this exam, or
	// the operation arrived after the session reached its final state.
	ErrAlreadyCompleted = errors.New("exam already completed")

	// ErrInvalidInput means the request referenced an out-of-range question
	// or carried an unusable payload.
	ErrInvalidInput = errors.New("invalid input")
)
