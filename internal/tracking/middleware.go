package tracking

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const (
	trackerKey contextKey = "tracker"
	requestKey contextKey = "tracking_request"
)

// NewContext returns a copy of ctx carrying t.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey, t)
}

// FromContext returns the Tracker carried by ctx, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey).(*Tracker)
	return t
}

// WithRequest returns a copy of ctx carrying info.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey, info)
}

// RequestFromContext returns the RequestInfo captured for the request.
func RequestFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestKey).(RequestInfo)
	return info, ok
}

// Capture stores t and the request's RequestInfo in the request context.
func Capture(t *Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := NewContext(r.Context(), t)
			ctx = WithRequest(ctx, RequestInfoFrom(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Pageviews emits page_view after every successful GET the wrapped handler
// serves. The response is not altered.
func Pageviews(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= http.StatusBadRequest {
			return
		}
		t := FromContext(r.Context())
		if t == nil {
			return
		}
		// Let the client have the response before the collector round trip.
		if f, ok := ww.(http.Flusher); ok {
			f.Flush()
		}
		t.TrackPageview(r.Context())
	})
}
