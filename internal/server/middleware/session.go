package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/session"
)

// SessionOptions configures the visitor session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session loads the visitor session named by the session cookie, issuing a
// new id when the cookie is missing or malformed, and saves it after the
// handler returns if it changed. A store failure degrades to an empty
// session rather than failing the request.
func Session(store session.Store, opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(opts.CookieName); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					id = c.Value
				}
			}

			var values map[string]string
			if id == "" {
				id = uuid.NewString()
			} else {
				loaded, err := store.Load(r.Context(), id)
				if err != nil {
					log.Warn().Err(err).Msg("session: load failed, continuing with empty session")
				}
				values = loaded
			}

			// Refreshed on every response so the cookie outlives active visitors.
			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			sess := session.New(id, values)
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))

			if !sess.Dirty() {
				return
			}
			if err := store.Save(context.WithoutCancel(r.Context()), id, sess.Values()); err != nil {
				log.Warn().Err(err).Msg("session: save failed")
			}
		})
	}
}
