package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ginLoggerKey is the gin context key holding the request logger
	ginLoggerKey = "logger"
	// ginRequestIDKey is where the request ID middleware leaves the ID
	ginRequestIDKey = "request_id"
	// interfaceParam is the route parameter naming the mapped interface
	interfaceParam = "interfaceName"
)

// GinMiddleware logs one line per request. The request logger is kept in
// the gin context and in the request context, where services and the GORM
// logger pick up the request ID and interface.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, l := WithRequestID(c.Request.Context(), base, c.GetString(ginRequestIDKey))
		if name := c.Param(interfaceParam); name != "" {
			ctx, l = WithInterface(ctx, l, name)
		}
		l = l.With(zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path))

		c.Set(ginLoggerKey, l)
		c.Request = c.Request.WithContext(WithContext(ctx, l))

		c.Next()

		status := c.Writer.Status()
		ce := l.Check(statusLevel(status), "HTTP Request")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		ce.Write(fields...)
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a bare 500 and logs it with the stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			base.Error("Panic recovered",
				zap.String("request_id", c.GetString(ginRequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", r),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger, or a no-op logger outside GinMiddleware
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
