package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Recovery returns middleware that turns a panic into a logged 500 with
// the standard error envelope. It must be first in the chain so the
// deferred recover catches everything downstream. The context logger is
// read at recovery time, after the ID middlewares have enriched it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				traceID := dto.GetTraceID(c)

				logging.FromContext(c.Request.Context()).Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(stack)),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
					slog.String("trace_id", traceID),
				)

				errResp := dto.NewErrorResponse(
					dto.ErrorCodeInternal,
					"an internal error occurred",
				).WithTraceID(traceID)

				// A handler may have started streaming before it panicked
				if c.Writer.Written() {
					c.Abort()
				} else {
					c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
				}
			}
		}()

		c.Next()
	}
}
