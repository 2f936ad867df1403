// Package domain contains core business entities and rules.
package domain

// CategoryAll is the filter value that selects every quote regardless
// of category. It is persisted verbatim as the last active filter.
const CategoryAll = "all"

// Quote represents a single quotation with its category.
// Quotes carry no identifier; identity is structural, meaning two
// quotes are the same record when both text and category match.
type Quote struct {
	// Text is the quotation itself.
	Text string `json:"text"`

	// Category groups quotes for filtering (for example "Motivation").
	Category string `json:"category"`
}

// Validate checks the entry-point invariants for a quote.
// Both text and category must be non-empty.
func (q Quote) Validate() error {
	if q.Text == "" {
		return NewValidationError("text", "cannot be empty")
	}

	if q.Category == "" {
		return NewValidationError("category", "cannot be empty")
	}

	return nil
}

// Key returns the structural identity of the quote, used for
// deduplication. The field separator cannot occur in JSON-decoded
// strings unescaped, so distinct pairs never collide.
func (q Quote) Key() string {
	return q.Text + "\x1f" + q.Category
}

// Equal reports whether two quotes are structurally identical.
func (q Quote) Equal(other Quote) bool {
	return q.Text == other.Text && q.Category == other.Category
}

// SeedQuotes returns the built-in collection persisted on first run,
// before any user-added or remote records exist.
func SeedQuotes() []Quote {
	return []Quote{
		{Text: "The journey of a thousand miles begins with a single step.", Category: "Motivation"},
		{Text: "Life is what happens when you're busy making other plans.", Category: "Life"},
		{Text: "The only true wisdom is in knowing you know nothing.", Category: "Wisdom"},
		{Text: "It is never too late to be what you might have been.", Category: "Inspiration"},
	}
}
