// Package dto defines the wire-level request and response types shared by
// the quote API handlers.
package dto

import "net/http"

// ErrorResponse is the envelope every non-2xx response carries. Handlers
// build it through HandleError and the binding helpers rather than by hand,
// so the shape stays uniform across endpoints.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the body of the envelope.
type ErrorDetail struct {
	// Code is one of the canonical error codes below.
	Code string `json:"code"`

	// Message is a single human-readable sentence.
	Message string `json:"message"`

	// Details carries field-level messages for validation failures,
	// keyed by the JSON spelling of each field.
	Details map[string]string `json:"details,omitempty"`
}

// Canonical error codes. Every error that leaves the API maps to exactly
// one of these; clients should branch on the code, not the message.
const (
	// ErrorCodeBadRequest covers payloads that could not be parsed at all.
	ErrorCodeBadRequest = "BAD_REQUEST"

	// ErrorCodeValidation covers payloads that parsed but failed a rule,
	// such as a blank quote text or an unexpected import document.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// ErrorCodeForbidden covers requests whose caller claims do not allow
	// the operation, such as a sync trigger without the operator role.
	ErrorCodeForbidden = "FORBIDDEN"

	// ErrorCodeNotFound covers lookups that matched nothing, such as a
	// random draw from a category with no quotes.
	ErrorCodeNotFound = "NOT_FOUND"

	// ErrorCodeConflict covers losing a race with a concurrent writer:
	// a snapshot version that moved, or a sync cycle already in flight.
	ErrorCodeConflict = "CONFLICT"

	// ErrorCodeInternal covers everything unclassified. The outbound
	// message is genericized before it leaves the process.
	ErrorCodeInternal = "INTERNAL_ERROR"

	// ErrorCodeUnavailable covers an unreachable dependency, either the
	// remote quote source or the snapshot store.
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
)

// NewErrorResponse builds an envelope from a code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

// NewErrorResponseWithDetails builds an envelope that also carries
// field-level details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	detail := ErrorDetail{Code: code, Message: message, Details: details}
	return &ErrorResponse{Error: detail}
}

// WithTraceID stamps the envelope with the request's trace ID and returns
// the same envelope for chaining.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode resolves the status line for a canonical error code.
// Unknown codes render as 500.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeBadRequest, ErrorCodeValidation:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
