package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// ContextKeyTraceID is the gin context key under which the telemetry
// middleware stores the active trace ID.
const ContextKeyTraceID = "trace_id"

// GetTraceID resolves the trace ID for the current request. It prefers the
// value stored by the telemetry middleware, falls back to the active span,
// and finally to the X-Request-ID header so error responses stay
// correlatable even when tracing is disabled.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyTraceID); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

// MapError maps a domain error to an HTTP status code and error response.
// Unavailable and unknown errors get generic messages so internal component
// names never leak to clients.
func MapError(err error) (int, *ErrorResponse) {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			"service temporarily unavailable, please retry later",
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// HandleError writes the mapped error response for a domain error.
// Internal errors are logged with their full message before the generic
// envelope goes out.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.WithTraceID(GetTraceID(c))

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			"error", err.Error(),
			"status", status,
			"trace_id", resp.TraceID,
		)
	}

	c.JSON(status, resp)
}

// HandleBindingError writes a 400 response for request binding or validation
// failures produced by BindAndValidate and friends. Validation failures carry
// field-level details; malformed payloads get a bare bad request envelope.
func HandleBindingError(c *gin.Context, err error) {
	var resp *ErrorResponse

	if IsValidationError(err) {
		resp = NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			ValidationErrors(err),
		)
	} else {
		resp = NewErrorResponse(ErrorCodeBadRequest, "request could not be parsed")
	}

	resp.WithTraceID(GetTraceID(c))
	c.JSON(http.StatusBadRequest, resp)
}
