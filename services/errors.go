package services

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the only error type that crosses from services into
// controllers. Status is the HTTP status the controller answers with.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return newAppError(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return newAppError(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return newAppError(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return newAppError(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return newAppError(http.StatusConflict, message, nil)
}

// Internal wraps an unexpected failure. The message is what clients see.
func Internal(message string, err error) *AppError {
	return newAppError(http.StatusInternalServerError, message, err)
}

// reason builds an AppError whose message is the sentinel's text so callers
// can both display it and match it with errors.Is.
func reason(status int, sentinel error) *AppError {
	return newAppError(status, sentinel.Error(), sentinel)
}

// AsAppError reports whether err carries an AppError.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Hierarchy validation reasons.
var (
	ErrConstituencyNotFound = errors.New("Constituency not found")
	ErrPanchayatNotFound    = errors.New("Panchayat not found")
	ErrPanchayatMismatch    = errors.New("Panchayat does not belong to the selected constituency")
	ErrWardNotFound         = errors.New("Ward does not exist in the selected panchayat")
)

var (
	ErrProfileIncomplete   = errors.New("Complete your profile with constituency, panchayat and ward before reporting an issue")
	ErrSelfUpvote          = errors.New("You cannot upvote your own issue")
	ErrAlreadyUpvoted      = errors.New("You have already upvoted this issue")
	ErrNotUpvoted          = errors.New("You have not upvoted this issue")
	ErrFeedbackNotReady    = errors.New("Feedback can only be added to resolved issues")
	ErrInvalidMonth        = errors.New("month must be in YYYY-MM format")
	ErrSuggestionsArchived = errors.New("Suggestions for this month have been archived")
)
