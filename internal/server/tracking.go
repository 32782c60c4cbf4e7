package server

import (
	"context"

	"github.com/gosuda/storefront/internal/server/middleware"
	"github.com/gosuda/storefront/internal/session"
	"github.com/gosuda/storefront/internal/tracking"
)

// TrackerOptions resolves the visitor session and the signed-in user the
// way this server's middleware stores them.
func TrackerOptions() []tracking.Option {
	return []tracking.Option{
		tracking.WithSessionResolver(func(ctx context.Context) (tracking.SessionValues, bool) {
			s, ok := session.FromContext(ctx)
			if !ok {
				return nil, false
			}
			return s, true
		}),
		tracking.WithUserResolver(middleware.UserIDFromContext),
	}
}
