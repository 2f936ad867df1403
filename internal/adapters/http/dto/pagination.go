package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// DefaultLimit is the page size when the request does not name one.
	DefaultLimit = 20

	// MaxLimit caps the page size a caller can request.
	MaxLimit = 100
)

var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals an absent cursor, i.e. a first-page request.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest carries the cursor and page size query parameters.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the requested page size (1 to 100, 20 when omitted).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with the default and cap applied.
func (p *PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// DecodeCursor decodes the cursor string into a Cursor.
// Returns ErrNoCursor if cursor is empty (first page request).
func (p *PaginationRequest) DecodeCursor() (*Cursor, error) {
	return DecodeCursor(p.Cursor)
}

// Offset resolves the starting position for this request.
// A missing cursor means the first page; a malformed one is an error.
func (p *PaginationRequest) Offset() (int, error) {
	cursor, err := p.DecodeCursor()
	if errors.Is(err, ErrNoCursor) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return cursor.Offset, nil
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	// Items is the array of items for this page.
	Items []T `json:"items"`

	// Total is the number of records in the whole collection.
	Total int `json:"total"`

	// NextCursor fetches the following page. Empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`

	// HasMore reports whether records remain past this page.
	HasMore bool `json:"hasMore"`
}

// NewPaginatedResponse cuts the window [offset, offset+limit) out of items
// and encodes a follow-up cursor when records remain past the window.
// An offset beyond the end yields an empty page, not an error.
func NewPaginatedResponse[T any](items []T, offset, limit int) *PaginatedResponse[T] {
	total := len(items)

	if offset < 0 {
		offset = 0
	}

	if offset > total {
		offset = total
	}

	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]T, end-offset)
	copy(page, items[offset:end])

	resp := &PaginatedResponse[T]{
		Items:   page,
		Total:   total,
		HasMore: end < total,
	}

	if resp.HasMore {
		resp.NextCursor = EncodeCursor(NewCursor(end))
	}

	return resp
}

// Cursor marks a stable position in the quote collection. The collection is
// append-only: existing records never move or disappear, new ones only land
// at the tail. A plain offset therefore survives concurrent adds, imports
// and sync merges without skipping or repeating records.
type Cursor struct {
	// Offset is the zero-based position of the next record to return.
	Offset int `json:"o"`
}

// EncodeCursor encodes a cursor to a base64 string.
func EncodeCursor(cursor *Cursor) string {
	if cursor == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string.
// Returns ErrNoCursor if the encoded string is empty.
func DecodeCursor(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	jsonBytes, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var cursor Cursor

	err = json.Unmarshal(jsonBytes, &cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	if cursor.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", ErrInvalidCursor)
	}

	return &cursor, nil
}

// NewCursor creates a cursor pointing at the given collection offset.
func NewCursor(offset int) *Cursor {
	return &Cursor{Offset: offset}
}

// EmptyPaginatedResponse returns a page with no items and no follow-up
// cursor.
func EmptyPaginatedResponse[T any]() *PaginatedResponse[T] {
	return &PaginatedResponse[T]{Items: []T{}}
}
