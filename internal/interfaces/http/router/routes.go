package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/logger"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/dto"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/handler"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers served by the engine
type Handlers struct {
	Integration   *handler.IntegrationHandler
	Configuration *handler.ConfigurationHandler
	System        *handler.SystemHandler
}

// EngineConfig holds what NewEngine needs besides the handlers
type EngineConfig struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	MeterProvider  *telemetry.MeterProvider
	Logger         *zap.Logger
}

// NewEngine builds the gin engine with the middleware chain and all routes.
// Inbound payloads are capped by HTTP.MaxBodySize.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		middleware.MappingSpan(),
		middleware.HTTPMetrics(cfg.MeterProvider, log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)),
	)
	engine.NoRoute(routeNotFound)

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	var groups []RouteGroup
	if h.Integration != nil {
		groups = append(groups, IntegrationRoutes(h.Integration, cfg.HTTP.MaxBodySize))
	}
	if h.Configuration != nil {
		groups = append(groups, ConfigurationRoutes(h.Configuration))
	}
	Mount(engine, APIVersion, groups...)

	return engine
}

func routeNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.Failure(dto.ErrCodeNotFound,
		"No route for "+c.Request.Method+" "+c.Request.URL.Path, middleware.GetRequestID(c)))
}

// IntegrationRoutes returns the inbound and outbound endpoints
func IntegrationRoutes(h *handler.IntegrationHandler, maxBodySize int64) RouteGroup {
	g := RouteGroup{Prefix: "/integration"}
	if maxBodySize > 0 {
		g.Middleware = append(g.Middleware, middleware.BodyLimit(maxBodySize))
	}
	return g.
		Post("/:interfaceName", h.ReceiveInbound).
		Post("/:interfaceName/outbound", h.RenderOutbound)
}

// ConfigurationRoutes returns the read-only configuration endpoints
func ConfigurationRoutes(h *handler.ConfigurationHandler) RouteGroup {
	return RouteGroup{Prefix: "/configuration"}.
		Get("", h.ListProcesses).
		Get("/:interfaceName", h.GetInterface)
}
