package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func entriesNamed(recorded *observer.ObservedLogs, msg string) []observer.LoggedEntry {
	return recorded.FilterMessage(msg).All()
}

func TestGinMiddleware(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	var requestID, iface string
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ginRequestIDKey, "req-42")
		c.Next()
	}, GinMiddleware(zap.New(core)))
	router.POST("/api/v1/integration/:interfaceName", func(c *gin.Context) {
		requestID = GetRequestID(c.Request.Context())
		iface = GetInterface(c.Request.Context())
		GetGinLogger(c).Info("handled")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/integration/MMI019", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-42", requestID)
	assert.Equal(t, "MMI019", iface)

	handled := entriesNamed(recorded, "handled")
	require.Len(t, handled, 1)
	assert.Equal(t, "MMI019", handled[0].ContextMap()["interface"])
	assert.Equal(t, "req-42", handled[0].ContextMap()["request_id"])

	access := entriesNamed(recorded, "HTTP Request")
	require.Len(t, access, 1)
	fields := access[0].ContextMap()
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
	assert.Equal(t, "/api/v1/integration/MMI019", fields["path"])
}

func TestGinMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusRequestEntityTooLarge, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/health", func(c *gin.Context) {
				if tt.status >= http.StatusInternalServerError {
					_ = c.Error(errors.New("database unreachable"))
				}
				c.Status(tt.status)
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

			access := entriesNamed(recorded, "HTTP Request")
			require.Len(t, access, 1)
			assert.Equal(t, tt.level, access[0].Level)
			_, hasErrors := access[0].ContextMap()["errors"]
			assert.Equal(t, tt.status >= http.StatusInternalServerError, hasErrors)
		})
	}
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	panics := entriesNamed(recorded, "Panic recovered")
	require.Len(t, panics, 1)
	assert.Equal(t, "boom", panics[0].ContextMap()["error"])
}

func TestGetGinLogger_Default(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
