package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestFromSpan_GeneratesWithoutSpan(t *testing.T) {
	tc := FromSpan(context.Background(), "")

	assert.NotEmpty(t, tc.TraceID)
	assert.Len(t, tc.SpanID, 16)
	assert.NotEmpty(t, tc.RequestID)
}

func TestFromSpan_KeepsRequestID(t *testing.T) {
	tc := FromSpan(context.Background(), "req-123")
	assert.Equal(t, "req-123", tc.RequestID)
}

func TestFromSpan_ReusesActiveSpanIdentity(t *testing.T) {
	traceID, err := oteltrace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := oteltrace.ContextWithSpanContext(context.Background(), sc)

	tc := FromSpan(ctx, "req-1")
	assert.Equal(t, traceID.String(), tc.TraceID)
	assert.Equal(t, spanID.String(), tc.SpanID)
}

func TestGetTraceID_Precedence(t *testing.T) {
	ctx := WithTrace(context.Background(), &TraceContext{TraceID: "stored"})
	assert.Equal(t, "stored", GetTraceID(ctx))

	// No stored trace, no span: a fresh ID is generated.
	assert.NotEmpty(t, GetTraceID(context.Background()))
}

func TestGetRequestID(t *testing.T) {
	ctx := WithTrace(context.Background(), &TraceContext{RequestID: "req-9"})
	assert.Equal(t, "req-9", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}
