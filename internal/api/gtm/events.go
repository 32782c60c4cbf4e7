package gtm

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/gosuda/storefront/internal/tracking"
)

const defaultEventsLimit = 20

// ServeEvents returns recent history records as JSON, most recent first.
// Query parameters: type (event name, empty for all) and limit.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultEventsLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = min(n, tracking.HistoryCapacity)
	}

	records := h.tracker.Recent(q.Get("type"), limit)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(records)
}
