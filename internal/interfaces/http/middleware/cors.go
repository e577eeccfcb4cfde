package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origin. ERP middleware posts server to server,
// so browsers only get CORS headers for configured origins.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

// CORSConfigFrom builds a CORSConfig from the HTTP settings
func CORSConfigFrom(hc config.HTTPConfig) CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = hc.CORSAllowOrigins
	if len(hc.CORSAllowMethods) > 0 {
		cfg.AllowMethods = hc.CORSAllowMethods
	}
	if len(hc.CORSAllowHeaders) > 0 {
		cfg.AllowHeaders = hc.CORSAllowHeaders
	}
	return cfg
}

// CORS is CORSWithConfig(DefaultCORSConfig())
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns the gin-contrib CORS handler for cfg. Requests from
// unlisted origins are refused with 403. Without any origin, preflight
// requests end with 204 and no CORS headers. A "*" origin never allows
// credentials.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
		}
	}

	cc := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		cc.AllowAllOrigins = true
		cc.AllowOrigins = nil
		cc.AllowCredentials = false
	}
	return cors.New(cc)
}
