package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/domain"
)

// RequireRole returns middleware that checks if the authenticated user has one
// of the allowed roles. It must be chained after Authenticate, which stores
// the user role in the request context via ContextKeyUserRole.
//
// Returns 401 Unauthorized when the request is anonymous. Returns 403
// Forbidden when the user role does not match any of the allowed roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			if _, match := allowed[role]; !match {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"insufficient permissions"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserGetter loads a user by id. domain.UserRepository satisfies it.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireAdmin admits only users who are administrators right now. The role
// claim in the token is not trusted: the user is re-read through users on
// every request, so revoking admin takes effect immediately.
//
// Returns 401 when the request is anonymous or the user no longer exists,
// 403 when the user is not an administrator.
func RequireAdmin(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			case err != nil:
				log.Error().Err(err).Int64("user_id", userID).Msg("rbac: load user")
				http.Error(w, `{"title":"Internal Server Error","status":500,"detail":"failed to load user"}`, http.StatusInternalServerError)
				return
			case !user.IsAdmin:
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"insufficient permissions"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user.ID, user.Role())))
		})
	}
}
