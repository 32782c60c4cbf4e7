package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/api/gtm"
	v1 "github.com/gosuda/storefront/internal/api/v1"
	"github.com/gosuda/storefront/internal/config"
	"github.com/gosuda/storefront/internal/server/middleware"
	"github.com/gosuda/storefront/internal/session"
	"github.com/gosuda/storefront/internal/tracking"
)

// Store is the persistence the server needs. *postgres.Store satisfies it.
type Store interface {
	v1.DataStore
	Ping(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      Store
	sessions   session.Store
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds the background
// cleanup of the rate limiters.
func New(
	ctx context.Context,
	cfg *config.Config,
	store Store,
	sessions session.Store,
	authSvc v1.AuthService,
	tracker *tracking.Tracker,
	notifier v1.Notifier,
) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router:   router,
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	gtmHandler := gtm.New(tracker)

	// Storefront API. Every group shares the visitor session, optional
	// authentication and the tracker on the request context.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(sessions, middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.SecureCookie,
		}))
		r.Use(middleware.Authenticate(cfg.JWT.Secret))
		r.Use(tracking.Capture(tracker))

		// Unauthenticated auth routes (register, login, refresh). This group
		// also serves the OpenAPI document and docs.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, "auth", authRPS, authBurst))
			registerAuthRoutes(newAPI(r, "Storefront Auth API", true), authSvc)
		})

		// Public catalog.
		r.Group(func(r chi.Router) {
			r.Use(tracking.Pageviews)
			registerCatalogRoutes(newAPI(r, "Storefront Catalog API", false), store, tracker)
		})

		// Signed-in customers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth())
			r.Use(tracking.Pageviews)
			registerCustomerRoutes(newAPI(r, "Storefront API", false), store, tracker, notifier)
		})

		// Administration.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(store.Users()))
			registerAdminRoutes(newAPI(r, "Storefront Admin API", false), store)
		})
	})

	// Collection endpoint and debug views (unauthenticated).
	router.With(middleware.RateLimitByIP(ctx, "collect", collectRPS, collectBurst)).
		Post("/collect", gtmHandler.Collect)
	router.Mount("/gtm", gtmHandler.DebugRoutes())

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", s.healthz)

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthz reports whether the database and, when it can be pinged, the
// session store are reachable.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	err := s.store.Ping(ctx)
	if p, ok := s.sessions.(pinger); ok && err == nil {
		err = p.Ping(ctx)
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		log.Warn().Err(err).Msg("health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
