package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-api/internal/observability"
)

const slowRequestThreshold = 500 * time.Millisecond

// RequestTelemetry records request counters, latency and a span for every
// /api route, and writes one structured log line per request.
func RequestTelemetry(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()
	tracer := otel.Tracer("campus-api/http")

	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}

		ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		// The matched route is only known after the handler chain ran.
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		code := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(c.Method(), route, code).Inc()
		observability.HTTPLatency().WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)

		event := logger.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			observability.HTTPErrors().WithLabelValues(c.Method(), route, code).Inc()
			span.SetStatus(codes.Error, code)
			event = logger.Error()
		case status >= fiber.StatusBadRequest:
			observability.HTTPErrors().WithLabelValues(c.Method(), route, code).Inc()
			event = logger.Warn()
		}

		if userID, ok := c.Locals("user_id").(uint); ok {
			event = event.Uint("user_id", userID)
		}
		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", c.Method()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Bool("slow", elapsed > slowRequestThreshold).
			Msg("request handled")

		return err
	}
}
