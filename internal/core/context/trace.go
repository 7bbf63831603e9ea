// Package context carries request-scoped tracing identity.
package context

import (
	"context"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TraceContext identifies one request across log lines and spans.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace ID from context, preferring the stored
// TraceContext, then an active otel span, then a fresh ID.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	if sc := oteltrace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return uuid.New().String()
}

// GetRequestID returns the request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// FromSpan builds a TraceContext for a request, reusing the identity of
// an active otel span when one is recording so logs and spans line up.
// Without a span, IDs are generated.
func FromSpan(ctx context.Context, requestID string) *TraceContext {
	if requestID == "" {
		requestID = uuid.New().String()
	}

	if sc := oteltrace.SpanContextFromContext(ctx); sc.IsValid() {
		return &TraceContext{
			TraceID:   sc.TraceID().String(),
			SpanID:    sc.SpanID().String(),
			RequestID: requestID,
		}
	}

	return &TraceContext{
		TraceID:   uuid.New().String(),
		SpanID:    uuid.New().String()[:16],
		RequestID: requestID,
	}
}
