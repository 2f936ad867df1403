// Package acl implements the Anti-Corruption Layer pattern for external services.
// ACL adapters translate between external API models and domain models,
// protecting the domain from external system changes.
package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// PlaceholderConfig contains configuration for the placeholder API adapter.
type PlaceholderConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should be set to the placeholder API root.
	Client *clients.Client

	// Name identifies this source in errors and health checks.
	Name string

	// Category is assigned to every fetched quote so callers can tell
	// remote records from local ones.
	Category string

	// BatchSize limits how many posts a single fetch requests.
	BatchSize int

	// UserID is attached to published quotes.
	UserID int

	// Logger is the structured logger.
	Logger *slog.Logger
}

// PlaceholderClient adapts the JSONPlaceholder posts API to the
// RemoteQuoteSource port. Post titles become quote text and every fetched
// quote carries the configured category; the rest of the post payload
// never leaves this adapter.
type PlaceholderClient struct {
	BaseAdapter
	category  string
	batchSize int
	userID    int
	logger    *slog.Logger
}

// Compile-time interface checks.
var (
	_ ports.RemoteQuoteSource = (*PlaceholderClient)(nil)
	_ ports.HealthChecker     = (*PlaceholderClient)(nil)
)

// NewPlaceholderClient creates a placeholder API adapter.
func NewPlaceholderClient(cfg PlaceholderConfig) (*PlaceholderClient, error) {
	if cfg.Client == nil {
		return nil, errors.New("placeholder client: Client is required")
	}

	if cfg.Name == "" {
		cfg.Name = "placeholder-api"
	}

	if err := ValidateRequired(cfg.Category, "category"); err != nil {
		return nil, err
	}

	if err := ValidatePositive(cfg.BatchSize, "batch_size"); err != nil {
		return nil, err
	}

	if err := ValidatePositive(cfg.UserID, "user_id"); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PlaceholderClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.Name),
		category:    cfg.Category,
		batchSize:   cfg.BatchSize,
		userID:      cfg.UserID,
		logger:      logger,
	}, nil
}

// placeholderPost is the external DTO from the placeholder posts API.
// This is an internal type - never exposed outside the ACL.
type placeholderPost struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// publishRequest is the outbound DTO for creating a post.
type publishRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// publishResponse is the subset of the create response this adapter reads.
// The placeholder API fabricates an id and echoes the payload back.
type publishResponse struct {
	ID int `json:"id"`
}

// FetchQuotes fetches a batch of posts and translates them to quotes.
// Implements ports.RemoteQuoteSource.
func (c *PlaceholderClient) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	path := "/posts?_limit=" + strconv.Itoa(c.batchSize)
	c.logger.Log(ctx, logging.LevelTrace, "starting fetch", slog.String("path", path))

	body, err := c.Get(ctx, path, "fetch quotes")
	if err != nil {
		return nil, err // Already a domain error
	}

	posts, err := DecodeResponse[[]placeholderPost](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	quotes, err := TranslateSlice(*posts, c.translatePost)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched remote quotes", slog.Int("count", len(quotes)))

	return quotes, nil
}

// translatePost converts an external post to a domain quote. Records are
// translated verbatim, empty titles included; the merge cycle decides what
// to keep.
func (c *PlaceholderClient) translatePost(ext *placeholderPost) (domain.Quote, error) {
	return domain.Quote{
		Text:     ext.Title,
		Category: c.category,
	}, nil
}

// PublishQuote posts a quote to the placeholder API. The quote text maps to
// the post title and the category to the post body.
// Implements ports.RemoteQuoteSource.
func (c *PlaceholderClient) PublishQuote(ctx context.Context, quote domain.Quote) error {
	payload, err := json.Marshal(publishRequest{
		Title:  quote.Text,
		Body:   quote.Category,
		UserID: c.userID,
	})
	if err != nil {
		return fmt.Errorf("encoding publish request: %w", err)
	}

	body, err := c.Post(ctx, "/posts", bytes.NewReader(payload), "publish quote")
	if err != nil {
		return err // Already a domain error
	}

	created, err := DecodeResponse[publishResponse](body)
	if err != nil {
		return domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	c.logger.DebugContext(ctx, "published quote",
		slog.Int("remote_id", created.ID),
		slog.String("category", quote.Category))

	return nil
}

// Name returns the health check name for this source.
// Implements ports.HealthChecker.
func (c *PlaceholderClient) Name() string {
	return c.ServiceName()
}

// Check verifies connectivity with a single-record fetch.
// Implements ports.HealthChecker.
func (c *PlaceholderClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, "/posts?_limit=1", "health check")
	if err != nil {
		return err
	}

	return body.Close()
}
