package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIVersion is the path segment all API groups are mounted under
const APIVersion = "v1"

// Route is one endpoint of a RouteGroup
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// RouteGroup is one API area. Middleware applies to its routes only.
type RouteGroup struct {
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
}

// Get appends a GET route
func (g RouteGroup) Get(path string, h gin.HandlerFunc) RouteGroup {
	g.Routes = append(g.Routes, Route{Method: http.MethodGet, Path: path, Handler: h})
	return g
}

// Post appends a POST route
func (g RouteGroup) Post(path string, h gin.HandlerFunc) RouteGroup {
	g.Routes = append(g.Routes, Route{Method: http.MethodPost, Path: path, Handler: h})
	return g
}

// Mount registers groups under /api/<version> and returns the API group
func Mount(engine *gin.Engine, version string, groups ...RouteGroup) *gin.RouterGroup {
	api := engine.Group("/api/" + version)
	for _, g := range groups {
		rg := api.Group(g.Prefix, g.Middleware...)
		for _, route := range g.Routes {
			rg.Handle(route.Method, route.Path, route.Handler)
		}
	}
	return api
}
