// Package errors defines the unified application error carried between the
// service layer and HTTP handlers.
package errors

import (
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/offline-note-sync-service/internal/middleware"
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError is the unified application error: business code, message,
// optional details, trace id and the wrapped cause.
type AppError struct {
	Code       int       `json:"code"`
	HTTPStatus int       `json:"-"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	TraceID    string    `json:"traceId,omitempty"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError builds an AppError from a registered Code object.
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		HTTPStatus: c.StatusCode(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
	}
}

func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ErrorResponse converts err into the standard response envelope with the
// request trace id attached. Code objects returned straight from services
// and wrapped AppErrors both map onto their registered HTTP status;
// anything else is an internal error.
func ErrorResponse(c *gin.Context, err error) {
	appErr := GetAppError(err)
	if appErr == nil {
		var codeErr *code.Code
		if errors.As(err, &codeErr) {
			appErr = NewAppError(codeErr, err)
		} else {
			appErr = NewAppError(code.ErrorServerInternal, err).WithDetails(err.Error())
		}
	}
	appErr.WithTraceID(middleware.GetTraceIDFromGin(c))

	c.Set("status_code", appErr.HTTPStatus)
	c.JSON(appErr.HTTPStatus, app.Res{
		Code:    appErr.Code,
		Status:  false,
		Message: appErr.Message,
		Details: strings.Join(appErr.Details, ","),
		TraceID: appErr.TraceID,
	})
}

// IsAppError reports whether err carries an AppError anywhere in its chain.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from the chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
