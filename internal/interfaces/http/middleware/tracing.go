// Package middleware provides the HTTP middleware of the manufacturing API.
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are not traced at all
	SkipPaths []string
}

// DefaultTracingConfig returns default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "manufacturing-ledger",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/ready"},
	}
}

// Tracing starts a server span per request via otelgin. Span names follow
// the route pattern, e.g. "GET /api/v1/products/:id".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return !slices.Contains(cfg.SkipPaths, r.URL.Path)
		}),
	)
}

// SpanEnricher tags the current server span with the request ID and the
// authenticated actor, and records handler errors on 5xx responses. It
// belongs after JWT authentication in the chain.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if actor, ok := GetActor(c); ok {
			span.SetAttributes(
				attribute.String("actor.id", actor.ID.String()),
				attribute.String("actor.role", actor.Role.String()),
			)
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			for _, e := range c.Errors {
				span.RecordError(e.Err)
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
