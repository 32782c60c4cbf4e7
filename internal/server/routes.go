package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/storefront/internal/api/v1"
)

// Per-IP limits for the unauthenticated write endpoints.
const (
	authRPS      = 1
	authBurst    = 10
	collectRPS   = 20
	collectBurst = 40
)

// newAPI mounts a huma API on r. Only one API per router tree may serve the
// OpenAPI document, docs and schemas.
func newAPI(r chi.Router, title string, docs bool) huma.API {
	cfg := huma.DefaultConfig(title, "1.0.0")
	cfg.Servers = []*huma.Server{
		{URL: "/api/v1"},
	}
	if !docs {
		cfg.OpenAPIPath = ""
		cfg.DocsPath = ""
		cfg.SchemasPath = ""
	}
	return humachi.New(r, cfg)
}

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerCatalogRoutes(api huma.API, store v1.DataStore, tracker v1.Tracker) {
	v1.RegisterCatalogRoutes(api, store, tracker)
}

func registerCustomerRoutes(api huma.API, store v1.DataStore, tracker v1.Tracker, notifier v1.Notifier) {
	v1.RegisterAccountRoutes(api, store, tracker)
	v1.RegisterCartRoutes(api, store, tracker)
	v1.RegisterOrderRoutes(api, store, tracker, notifier)
}

func registerAdminRoutes(api huma.API, store v1.DataStore) {
	v1.RegisterAdminRoutes(api, store)
}
