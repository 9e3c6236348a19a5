package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error with the HTTP status it should be reported with.
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	DevDetails string `json:"dev_details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

func TooLarge(message string) *Error {
	return &Error{Code: http.StatusRequestEntityTooLarge, Message: message}
}

func Unavailable(message string) *Error {
	return &Error{Code: http.StatusServiceUnavailable, Message: message}
}

func Internal(message string, details string) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, DevDetails: details}
}

// Wrap returns err as an *Error. Errors that are not already *Error become 500s.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:       http.StatusInternalServerError,
		Message:    err.Error(),
		DevDetails: fmt.Sprintf("%+v", err),
	}
}
