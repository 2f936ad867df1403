package ports

import (
	"context"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// RemoteQuoteSource is the sync port for the upstream quote feed.
// Adapters translate the remote representation into domain quotes before
// returning them; the application layer never sees external DTOs.
type RemoteQuoteSource interface {
	// FetchQuotes retrieves one fixed-size batch of remote records,
	// already converted to the local schema.
	// Returns domain.ErrUnavailable when the upstream is unreachable.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)

	// PublishQuote pushes a newly added local record upstream.
	// Only success or failure is reported; the response body is not
	// interpreted beyond that.
	PublishQuote(ctx context.Context, quote domain.Quote) error
}
