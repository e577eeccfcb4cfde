package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	interfaceKey
)

// WithContext attaches l to ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Lookup returns the logger attached to ctx, if any
func Lookup(ctx context.Context) (*zap.Logger, bool) {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	return l, ok
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores requestID in ctx and attaches l tagged with it
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return tag(ctx, l, requestIDKey, "request_id", requestID)
}

// WithInterface stores the interface being mapped in ctx and attaches l
// tagged with it
func WithInterface(ctx context.Context, l *zap.Logger, name string) (context.Context, *zap.Logger) {
	return tag(ctx, l, interfaceKey, "interface", name)
}

func tag(ctx context.Context, l *zap.Logger, key ctxKey, field, value string) (context.Context, *zap.Logger) {
	l = l.With(zap.String(field, value))
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, l), l
}

// ForInterface scopes ctx to one interface. The context logger, or fallback
// when ctx has none, is tagged with the interface unless ctx already is.
// The returned logger also carries the active span.
func ForInterface(ctx context.Context, fallback *zap.Logger, name string) (context.Context, *zap.Logger) {
	l, ok := Lookup(ctx)
	if !ok {
		l = fallback
	}
	if GetInterface(ctx) != name {
		ctx, _ = WithInterface(ctx, l, name)
	} else if !ok {
		ctx = WithContext(ctx, l)
	}
	return ctx, L(ctx)
}

// GetRequestID returns the request ID stored in ctx
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetInterface returns the interface name stored in ctx
func GetInterface(ctx context.Context) string {
	name, _ := ctx.Value(interfaceKey).(string)
	return name
}

// GetTraceID returns the trace ID of the span in ctx, or "" without a valid span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// L returns the context logger with the active trace and span IDs.
//
//	logger.L(ctx).Info("Process applied", zap.Int("rows", n))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
