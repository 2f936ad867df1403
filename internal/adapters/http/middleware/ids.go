// Package middleware provides HTTP middleware components for the Gin server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

const (
	// HeaderRequestID is the header carrying the per-request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID is the header carrying the correlation ID. A
	// request ID names one hop; the correlation ID follows the whole
	// transaction across services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// RequestID returns middleware that adopts the caller's X-Request-ID or
// mints a UUID when absent. The ID is stored on the gin context and the
// request context, echoed on the response and attached to the context
// logger. Outbound clients read it back for downstream propagation.
func RequestID() gin.HandlerFunc {
	return trackingID(HeaderRequestID, ContextKeyRequestID, func(ctx context.Context, id string) context.Context {
		return logging.WithRequestID(ContextWithRequestID(ctx, id), id)
	})
}

// CorrelationID returns middleware that propagates X-Correlation-ID from
// upstream, minting one when this service is the transaction origin.
func CorrelationID() gin.HandlerFunc {
	return trackingID(HeaderCorrelationID, ContextKeyCorrelationID, func(ctx context.Context, id string) context.Context {
		return logging.WithCorrelationID(ContextWithCorrelationID(ctx, id), id)
	})
}

// trackingID is the shared extract-or-mint implementation behind both
// ID middlewares.
func trackingID(header, contextKey string, enrich func(context.Context, string) context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(contextKey, id)
		c.Header(header, id)

		ctx := enrich(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request ID set by the RequestID middleware,
// or "" when the middleware has not run.
func GetRequestID(c *gin.Context) string {
	return idFromContext(c, ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID set by the CorrelationID
// middleware, or "" when the middleware has not run.
func GetCorrelationID(c *gin.Context) string {
	return idFromContext(c, ContextKeyCorrelationID)
}

func idFromContext(c *gin.Context, key string) string {
	if id, exists := c.Get(key); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}
