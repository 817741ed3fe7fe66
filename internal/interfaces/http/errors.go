package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/infrastructure/validate"
)

// RESTStandardError response error
type RESTStandardError struct {
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func NewRESTStandardError(code int, detail string) *RESTStandardError {
	return &RESTStandardError{
		Code:   code,
		Title:  http.StatusText(code),
		Detail: detail,
	}
}

func (re RESTStandardError) Error() string {
	return re.Detail
}

func (re RESTStandardError) SetTraceID(traceID string) RESTStandardError {
	re.TraceID = traceID
	return re
}

// RESTValidationError standard validation error
type RESTValidationError struct {
	RESTStandardError
	InvalidParams []*validate.FieldError `json:"invalid_params"`
}

func NewRESTValidationError(code int, detail string, internal []*validate.FieldError) *RESTValidationError {
	return &RESTValidationError{
		RESTStandardError: RESTStandardError{
			Code:   code,
			Title:  http.StatusText(code),
			Detail: detail,
		},
		InvalidParams: internal,
	}
}

func (rve RESTValidationError) Error() string {
	return rve.Detail
}

func (rve RESTValidationError) SetTraceID(traceID string) RESTValidationError {
	rve.RESTStandardError.TraceID = traceID
	return rve
}

// NewRESTErrorFromError map err onto a response error
func NewRESTErrorFromError(err error) *RESTStandardError {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		detail := http.StatusText(he.Code)
		if he.Message != nil {
			detail = fmt.Sprintf("%v", he.Message)
		}
		return NewRESTStandardError(he.Code, detail)
	case errors.Is(err, domain.ErrCourseNotFound):
		return NewRESTStandardError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBackendUnavailable):
		return NewRESTStandardError(http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrDataNotReady):
		return NewRESTStandardError(http.StatusServiceUnavailable, err.Error())
	}
	return NewRESTStandardError(http.StatusInternalServerError, err.Error())
}
