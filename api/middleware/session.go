package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/smkpro/smkpro-backend/pkg/logger"
)

const (
	sessionCookieName = "smk_session"
	sessionCookieTTL  = 30 * 24 * time.Hour
)

// Session guarantees every request carries a stable anonymous session id.
// The id arrives in a cookie; first-time visitors get a fresh one so their
// cart and wishlist survive until they log in and the merge picks them up.
func Session(logg *logger.Logger, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionID,
					Path:     "/",
					Expires:  time.Now().Add(sessionCookieTTL),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
