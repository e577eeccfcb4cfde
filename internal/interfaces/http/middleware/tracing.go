// Package middleware provides HTTP middleware for the mapping service.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin middleware, or a pass-through when
// tracing is disabled. Span names are "METHOD route", e.g.
// "POST /api/v1/integration/:interfaceName".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// MappingSpan tags the server span with the request ID and the mapped
// interface, and marks it failed on 4xx and 5xx responses. It runs after
// TracingWithConfig and RequestID.
func MappingSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		attrs := make([]attribute.KeyValue, 0, 2)
		if id := GetRequestID(c); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if name := c.Param(InterfaceParam); name != "" {
			attrs = append(attrs, attribute.String("mapping.interface", name))
		}
		span.SetAttributes(attrs...)

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
