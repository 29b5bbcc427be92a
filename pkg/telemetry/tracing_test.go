package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestInjectTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	attrs := InjectTraceContext(ctx)

	require.Contains(t, attrs, "traceparent")
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", *attrs["traceparent"].StringValue)
	assert.Equal(t, "String", *attrs["traceparent"].DataType)
}

func TestSQSCarrierKeys(t *testing.T) {
	c := sqsCarrier{attrs: map[string]types.MessageAttributeValue{}}
	c.Set("a", "1")
	c.Set("b", "2")

	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, "1", c.Get("a"))
	assert.Empty(t, c.Get("missing"))
}
