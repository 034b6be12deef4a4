package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_NoopProvider(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordResolution(ctx, metrics, 40, 3)
		RecordSkippedEntry(ctx, metrics)
		RecordCacheHit(ctx, metrics, "catalog:snapshot")
		RecordCacheMiss(ctx, metrics, "catalog:snapshot")
	})
}

func TestRecorders_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordResolution(ctx, nil, 40, 0)
		RecordSkippedEntry(ctx, nil)
		RecordCacheHit(ctx, nil, "k")
		RecordCacheMiss(ctx, nil, "k")
	})
}

func TestLoggerFromContext_WithoutSpan(t *testing.T) {
	InitLogger("pharmacy-locator-test", "production", "debug")
	logger := LoggerFromContext(context.Background())
	require.NotNil(t, logger)
	assert.NotNil(t, GetLogger())
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span")
	defer span.End()
	assert.NotNil(t, ctx)
	RecordError(span, nil)
}
