// Package apperr defines the API error taxonomy and its single translation
// into HTTP status codes and the JSON envelope.
package apperr

import (
	"errors"
	"net/http"

	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Error struct {
	Status  int
	Title   string
	Message string
	Fields  []types.FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Title + ": " + e.Message
	}
	return e.Title
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(fields []types.FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Title: "Validation Error", Fields: fields}
}

func BadRequest(title string) *Error {
	return &Error{Status: http.StatusBadRequest, Title: title}
}

func Unauthorized() *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Title:   "Unauthorized",
		Message: "You must be logged in to access this resource",
	}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Title: "Forbidden", Message: message}
}

func NotFound(title string) *Error {
	return &Error{Status: http.StatusNotFound, Title: title}
}

func Conflict(title string) *Error {
	return &Error{Status: http.StatusConflict, Title: title}
}

func TooManyRequests() *Error {
	return &Error{
		Status:  http.StatusTooManyRequests,
		Title:   "Too Many Requests",
		Message: "Rate limit exceeded, try again later",
	}
}

func Upstream(title string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Title: title, Err: err}
}

func Internal(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Title:   "Internal Server Error",
		Message: "An unexpected error occurred",
		Err:     err,
	}
}

// From classifies any error returned by a handler.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Status: http.StatusNotFound, Title: "Not Found", Message: "Record not found", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{
			Status:  http.StatusConflict,
			Title:   "Unique Constraint Violation",
			Message: "A record with this value already exists",
			Err:     err,
		}
	}

	return Internal(err)
}

// Write renders err as the error envelope. Server-side failures are logged.
func Write(c *gin.Context, err error) {
	appErr := From(err)

	if appErr.Status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(appErr.Status, types.Response{
		Success: false,
		Error:   appErr.Title,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}
