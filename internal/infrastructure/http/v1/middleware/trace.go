package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "margem/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace middleware adds request tracing context.
// Honors caller-provided IDs, otherwise derives them via FromSpan.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.FromSpan(c.Request.Context(), c.GetHeader(HeaderRequestID))
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			trace.TraceID = traceID
		}

		// Add to context
		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("trace_id", trace.TraceID)
		c.Set("request_id", trace.RequestID)

		// Add to response headers
		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
