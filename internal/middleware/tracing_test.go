package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"campuscare/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

const (
	parentTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	parentSpanID  = "00f067aa0ba902b7"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevTracer, prevPropagator := observability.Tracer, otel.GetTextMapPropagator()
	observability.Tracer = tp.Tracer("test")
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		observability.Tracer = prevTracer
		otel.SetTextMapPropagator(prevPropagator)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestTracingMiddleware(t *testing.T) {
	recorder := recordSpans(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(TracingMiddleware())
	app.Get("/posts", func(c *fiber.Ctx) error {
		span, ctx := observability.StartSpan(c.UserContext(), "list", 0)
		defer span.End(nil)
		traceID, _ := ctx.Value(observability.TraceIDKey).(string)
		return c.SendString(traceID)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})

	t.Run("continues incoming trace", func(t *testing.T) {
		before := len(recorder.Ended())
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set("traceparent", "00-"+parentTraceID+"-"+parentSpanID+"-01")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, parentTraceID, resp.Header.Get(TraceHeader))

		spans := recorder.Ended()[before:]
		require.Len(t, spans, 2)
		service, server := spans[0], spans[1]
		assert.Equal(t, "forum.list", service.Name())
		assert.Equal(t, "GET /posts", server.Name())
		assert.Equal(t, trace.SpanKindServer, server.SpanKind())
		assert.Equal(t, parentSpanID, server.Parent().SpanID().String())
		assert.True(t, server.Parent().IsRemote())
		assert.Equal(t, server.SpanContext().SpanID(), service.Parent().SpanID())
	})

	t.Run("starts a new trace without headers", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
		require.NoError(t, err)
		traceID := resp.Header.Get(TraceHeader)
		assert.Len(t, traceID, 32)
		assert.NotEqual(t, parentTraceID, traceID)
	})

	t.Run("marks server errors", func(t *testing.T) {
		before := len(recorder.Ended())
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		spans := recorder.Ended()[before:]
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}
