package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// BaseAdapter carries the transport plumbing shared by every source
// adapter: a resilient HTTP client plus the name used in mapped errors.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter wires client under the given source name.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client exposes the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName reports which external source this adapter fronts.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get issues a GET for the absolute path and hands back the raw body.
// Anything that goes wrong comes back as a domain error.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)

	return a.accept(resp, err, operation)
}

// Post issues a POST with the given body and hands back the raw response
// body. Anything that goes wrong comes back as a domain error.
func (a *BaseAdapter) Post(ctx context.Context, path string, body io.Reader, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Post(ctx, path, body)

	return a.accept(resp, err, operation)
}

// accept turns a transport result into a readable body or a mapped domain
// error. Bodies of error statuses are consumed by the mapper and closed
// here.
func (a *BaseAdapter) accept(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation, "")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation, "")
	}

	return resp.Body, nil
}

// DecodeResponse drains body into a value of type T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var out T
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}

// ValidateRequired rejects empty string settings with a domain validation
// error naming the field.
func ValidateRequired(value, fieldName string) error {
	if value != "" {
		return nil
	}
	return domain.NewValidationError(fieldName, "is required")
}

// ValidatePositive rejects zero or negative numeric settings.
func ValidatePositive[T ~int | ~int64 | ~float64](value T, fieldName string) error {
	if value > 0 {
		return nil
	}
	return domain.NewValidationError(fieldName, "must be positive")
}

// Translator converts one external record into its domain representation,
// or reports why the record cannot be represented.
type Translator[External any, Domain any] func(ext *External) (Domain, error)

// TranslateSlice runs translate over every record, stopping at the first
// failure with the offending index in the error.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]D, error) {
	out := make([]D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		out = append(out, translated)
	}

	return out, nil
}
