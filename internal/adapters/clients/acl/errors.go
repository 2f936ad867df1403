package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Remote sources disagree about error envelopes: some nest code and message
// under an "error" key, others put them at the top level. ErrorResponse
// decodes both shapes; read it through GetCode and GetMessage.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested form of a remote error body.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetCode returns the error code, preferring the nested form.
func (e *ErrorResponse) GetCode() string {
	return firstNonEmpty(e.Error.Code, e.Code)
}

// GetMessage returns the error message, preferring the nested form.
func (e *ErrorResponse) GetMessage() string {
	return firstNonEmpty(e.Error.Message, e.Message)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// ParseErrorResponse decodes a remote error body in either envelope shape.
// A nil, unparseable, or contentless body yields nil rather than an error;
// the status code alone still carries enough to map.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var parsed ErrorResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil
	}

	if parsed.GetCode() == "" && parsed.GetMessage() == "" {
		return nil
	}

	return &parsed
}

// MapHTTPError turns a failed call to a remote quote source into the
// matching domain error, so nothing above this package handles raw HTTP.
//
// clientErr covers failures where no response arrived at all (breaker open,
// retries exhausted, transport faults) and wins over resp when both are set.
// entityID feeds the NotFoundError when the remote answers 404. A 2xx resp
// maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	if clientErr != nil {
		return translateClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	return translateStatusCode(resp.StatusCode, errResp, serviceName, operation, entityID)
}

// translateClientError maps transport-level sentinels onto unavailability.
// Every shape of "we never got an answer" looks the same to the sync layer.
func translateClientError(err error, serviceName, operation string) error {
	reason := fmt.Sprintf("%s failed: %v", operation, err)

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = fmt.Sprintf("circuit breaker open during %s", operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		reason = fmt.Sprintf("max retries exceeded during %s", operation)
	}

	return domain.NewUnavailableError(serviceName, reason)
}

// translateStatusCode maps a remote status onto a domain error, taking the
// message from the parsed body when one was present.
func translateStatusCode(status int, errResp *ErrorResponse, serviceName, operation, entityID string) error {
	message := fallbackMessage(status, operation)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch status {
	case http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return validationFromDetails(errResp, message)
	case http.StatusConflict:
		return domain.NewConflictError(serviceName, message)
	case http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	case http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.NewUnavailableError(serviceName, message)
	default:
		if status >= http.StatusInternalServerError {
			return domain.NewUnavailableError(serviceName, message)
		}

		// Remaining 4xx statuses read as the remote rejecting our request.
		return domain.NewValidationError("", message)
	}
}

// validationFromDetails surfaces the first field-level detail the remote
// sent, falling back to a bare validation error with the given message.
func validationFromDetails(errResp *ErrorResponse, message string) error {
	if errResp != nil {
		for field, msg := range errResp.Error.Details {
			return domain.NewValidationError(field, msg)
		}
	}

	return domain.NewValidationError("", message)
}

// fallbackMessage supplies wording for statuses whose mapped error carries a
// free-text message. Statuses that build a fixed error (404, 401, 429) never
// consult it.
func fallbackMessage(status int, operation string) string {
	switch status {
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid request"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}

// Error codes some remote sources put in their response bodies. They map to
// the same domain errors as the corresponding HTTP statuses.
const (
	// ExternalCodeNotFound marks a missing resource.
	ExternalCodeNotFound = "NOT_FOUND"
	// ExternalCodeConflict marks a state conflict.
	ExternalCodeConflict = "CONFLICT"
	// ExternalCodeValidation marks a rejected payload.
	ExternalCodeValidation = "VALIDATION_ERROR"
	// ExternalCodeForbidden marks a denied operation.
	ExternalCodeForbidden = "FORBIDDEN"
	// ExternalCodeUnauthorized marks missing authentication.
	ExternalCodeUnauthorized = "UNAUTHORIZED"
)

// MapExternalCode maps a body-level error code to a domain error, for remote
// sources that signal failure inside a 200 response. Unknown codes read as
// the source being unavailable.
func MapExternalCode(code, message, serviceName, operation, entityID string) error {
	switch code {
	case ExternalCodeNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case ExternalCodeValidation:
		return domain.NewValidationError("", message)
	case ExternalCodeConflict:
		return domain.NewConflictError(serviceName, message)
	case ExternalCodeUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	case ExternalCodeForbidden:
		return domain.NewForbiddenError(operation, message)
	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}
