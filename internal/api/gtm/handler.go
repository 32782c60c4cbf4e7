// Package gtm serves the collection endpoint and the tracking debug views.
package gtm

import (
	"github.com/go-chi/chi/v5"

	"github.com/gosuda/storefront/internal/tracking"
)

// Handler serves /collect and the /gtm debug endpoints from a Tracker.
type Handler struct {
	tracker *tracking.Tracker
}

// New creates a Handler reading configuration and history from tracker.
func New(tracker *tracking.Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// DebugRoutes returns the router mounted under /gtm. None of these routes
// are authenticated.
func (h *Handler) DebugRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/debug", h.ServeDebug)
	r.Get("/debug/events", h.ServeEvents)
	r.Get("/debug/stream", h.ServeStream)
	return r
}
