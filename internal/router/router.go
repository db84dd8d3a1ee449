package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/chenterphai/storefront-api/internal/config"
	"github.com/chenterphai/storefront-api/internal/handler" // import the handlers that serve the API
	"github.com/chenterphai/storefront-api/internal/metrics"
	"github.com/chenterphai/storefront-api/internal/middleware" // import request context, logging and rate limit middleware
)

// Deps are the collaborators the routes need.
type Deps struct {
	GraphQL      *handler.GraphQLHandler
	DB           handler.Pinger
	RateLimit    config.RateLimitConfig
	Redis        *redis.Client // nil selects in-process rate limiting
	AllowOrigins []string
}

// RegisterRoutes installs the global middleware and every route on e.
// Authentication is not a route middleware: protected GraphQL fields call
// the authenticator themselves.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Probes and metrics are not rate limited.
	e.GET("/healthz", handler.Health)
	if d.DB != nil {
		e.GET("/readyz", handler.Ready(d.DB))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// The GraphQL endpoint carries the echo request in its context so that
	// resolvers can read headers and cookies and set cookies.
	api := e.Group("/api/v1", middleware.NewTokenBucket(d.RateLimit, d.Redis), middleware.BindEchoContext())
	api.POST("/graphql", d.GraphQL.Serve)
	api.GET("/graphql", d.GraphQL.Serve)
}
