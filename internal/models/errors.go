package models

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error. Handlers map it to an HTTP
// status; anything that is not an AppError becomes a 500.
type AppError struct {
	Code    string
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewUnauthenticated returns a 401 error.
func NewUnauthenticated(message string) *AppError {
	return &AppError{Code: "UNAUTHENTICATED", Message: message, Status: http.StatusUnauthorized}
}

// NewNotFound returns a 404 error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

// NewValidation returns a 400 error for missing or invalid input.
func NewValidation(message string) *AppError {
	return &AppError{Code: "VALIDATION", Message: message, Status: http.StatusBadRequest}
}

// NewConflict returns a 400 error for state conflicts such as double pairing.
func NewConflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusBadRequest}
}

// NewForbidden returns a 403 error.
func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

// NewInternal returns a 500 error.
func NewInternal(message string) *AppError {
	return &AppError{Code: "INTERNAL", Message: message, Status: http.StatusInternalServerError}
}

// Pairing errors.
var (
	ErrAlreadyPaired       = NewConflict("You are already linked to a partner")
	ErrCodeNotFound        = NewNotFound("Invalid partner code")
	ErrSelfPairing         = NewConflict("You cannot link with yourself")
	ErrTargetAlreadyPaired = NewConflict("This user is already linked to someone else")
	ErrCodeExhausted       = &AppError{Code: "CODE_EXHAUSTED", Message: "Could not generate a unique partner code", Status: http.StatusInternalServerError}
)

// Lookup errors shared across services.
var (
	ErrUserNotFound       = NewNotFound("User not found")
	ErrTaskNotFound       = NewNotFound("Task not found")
	ErrQuestionNotFound   = NewNotFound("Question not found")
	ErrPhotoNotFound      = NewNotFound("Photo not found")
	ErrCompletionNotFound = NewNotFound("Completion not found")
)
