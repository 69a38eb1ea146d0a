package main

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/hello-api/internal/http/health"
	"github.com/janisto/hello-api/internal/http/v1/routes"
	"github.com/janisto/hello-api/internal/platform/apiconfig"
	"github.com/janisto/hello-api/internal/platform/config"
	applog "github.com/janisto/hello-api/internal/platform/logging"
	appmiddleware "github.com/janisto/hello-api/internal/platform/middleware"
	"github.com/janisto/hello-api/internal/platform/respond"
)

const apiTitle = "Hello API"

// newRouter assembles the middleware stack and mounts the API operations
// plus the optional health and docs endpoints selected by cfg.
func newRouter(cfg config.Config) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	skipSecurity := ""
	if cfg.DocsEnabled {
		skipSecurity = apiconfig.DocsPath
	}

	router.Use(
		appmiddleware.Security(skipSecurity),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For; only deploy behind a proxy that sets them.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	if cfg.HealthEnabled {
		router.Get(health.Path, health.Handler)
	}

	api := humachi.New(router, apiconfig.New(apiTitle, Version, cfg.DocsEnabled))
	routes.Register(api)

	return router
}
