package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound       ErrCode = "NOT_FOUND"
	ErrCodeRateLimited    ErrCode = "RATE_LIMITED"
	ErrCodeStatsComputing ErrCode = "STATS_COMPUTING"
	ErrCodeFetchFailed    ErrCode = "FETCH_FAILED"
	ErrCodeInternal       ErrCode = "INTERNAL_ERROR"
	ErrCodeBadRequest     ErrCode = "BAD_REQUEST"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewRateLimitedError creates a new rate limited error. A non-zero reset is
// included in the message so the caller can tell the user when to come back.
func NewRateLimitedError(reset time.Time, err error) *AppError {
	msg := "API rate limit exceeded"
	if !reset.IsZero() {
		msg = fmt.Sprintf("%s, quota resets at %s", msg, reset.UTC().Format(time.RFC3339))
	}
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: msg,
		Err:     err,
	}
}

// NewStatsComputingError creates an error for statistics the source is still computing
func NewStatsComputingError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeStatsComputing,
		Message: fmt.Sprintf("%s are still being computed, try again shortly", resource),
	}
}

// NewFetchFailedError creates a new error for any other non-success response
func NewFetchFailedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeFetchFailed,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternal when there is none
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func hasCode(err error, code ErrCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return hasCode(err, ErrCodeRateLimited)
}

// IsStatsComputing checks if the error is a stats computing error
func IsStatsComputing(err error) bool {
	return hasCode(err, ErrCodeStatsComputing)
}

// IsFetchFailed checks if the error is a generic fetch failure
func IsFetchFailed(err error) bool {
	return hasCode(err, ErrCodeFetchFailed)
}
