package tracing

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"curalink/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()

	assert.True(t, strings.HasPrefix(a, "req_"))
	assert.Len(t, a, len("req_")+16)
	assert.NotEqual(t, a, b)
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.True(t, GetStartTime(ctx).IsZero())
	assert.Zero(t, Duration(ctx))

	start := time.Now().Add(-50 * time.Millisecond)
	ctx = WithRequestID(ctx, "req_1")
	ctx = WithStartTime(ctx, start)

	assert.Equal(t, "req_1", GetRequestID(ctx))
	assert.Equal(t, start, GetStartTime(ctx))
	assert.GreaterOrEqual(t, Duration(ctx), 50*time.Millisecond)
}

func TestTracingManager_Disabled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tm := NewTracingManager(models.TracingConfig{}, logger)
	require.NoError(t, tm.Initialize(context.Background()))
	assert.Nil(t, tm.tracerProvider)
	assert.NoError(t, tm.Shutdown(context.Background()))
	assert.Equal(t, 0.1, tm.config.SampleRate)
}

func TestTracingManager_EnabledConsole(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tm := NewTracingManager(models.TracingConfig{Enabled: true, UseConsole: true, SampleRate: 1}, logger)
	require.NoError(t, tm.Initialize(context.Background()))
	require.NotNil(t, tm.tracerProvider)

	ctx, span := StartFacadeSpan(context.Background(), "local", "contacts", "getAll")
	assert.NotEmpty(t, GetOtelTraceID(ctx))
	EndSpan(span, nil)

	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestEndSpan_RecordsError(t *testing.T) {
	_, span := StartSpan(context.Background(), "test")
	assert.NotPanics(t, func() { EndSpan(span, assert.AnError) })
}

func TestGetOtelTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetOtelTraceID(context.Background()))
}
