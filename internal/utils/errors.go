package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure by the pipeline stage that produced it.
type ErrorKind string

const (
	KindInput       ErrorKind = "input"
	KindAcquisition ErrorKind = "acquisition"
	KindExtraction  ErrorKind = "extraction"
	KindCompletion  ErrorKind = "completion"
	KindInternal    ErrorKind = "internal"
)

// AppError is an error that is safe to show to the user. Message is the
// user-facing text; Err keeps the underlying cause for logs.
type AppError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsWarning reports whether the error should be rendered as a warning
// rather than an error.
func (e *AppError) IsWarning() bool {
	return e.Kind == KindInput
}

func NewInputError(message string) *AppError {
	return &AppError{Kind: KindInput, StatusCode: http.StatusBadRequest, Message: message}
}

func NewAcquisitionError(message string, err error) *AppError {
	return &AppError{Kind: KindAcquisition, StatusCode: http.StatusBadGateway, Message: message, Err: err}
}

func NewExtractionError(message string, err error) *AppError {
	return &AppError{Kind: KindExtraction, StatusCode: http.StatusUnprocessableEntity, Message: message, Err: err}
}

func NewCompletionError(message string, err error) *AppError {
	return &AppError{Kind: KindCompletion, StatusCode: http.StatusBadGateway, Message: message, Err: err}
}

func NewTooLargeError(message string, err error) *AppError {
	return &AppError{Kind: KindAcquisition, StatusCode: http.StatusRequestEntityTooLarge, Message: message, Err: err}
}

func NewInternalError(message string) *AppError {
	return &AppError{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Message: message}
}

// AsAppError unwraps err into an AppError. Anything that is not already one
// becomes a generic internal error so its details never reach the user.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Kind:       KindInternal,
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		Err:        err,
	}
}
