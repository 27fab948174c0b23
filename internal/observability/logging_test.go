package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(42))
	ctx = WithCorrelationID(ctx, "corr-1")

	logger.InfoContext(ctx, "post approved", "post_id", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, float64(42), record["user_id"])
	assert.Equal(t, "corr-1", record["correlation_id"])
	assert.Equal(t, float64(3), record["post_id"])
}

func TestCorrelationID(t *testing.T) {
	id := GenerateCorrelationID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, GenerateCorrelationID())

	assert.Equal(t, "", ExtractCorrelationID(context.Background()))
	assert.Equal(t, id, ExtractCorrelationID(WithCorrelationID(context.Background(), id)))
}

func TestStartSpan_DisabledTracing(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	span, ctx := StartSpan(context.Background(), "approve", 1)
	require.NotNil(t, ctx)
	span.End(nil)
}
