package entitlement

import (
	"log/slog"
	"net/http"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
)

// Middleware wires access gates for HTTP handlers. It expects the identity
// middleware to have placed the user id on the request context.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireUser rejects anonymous requests with 401.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.UserIDFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUnlocked rejects anonymous requests with 401 and locked accounts with 403.
func (m Middleware) RequireUnlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := shared.UserIDFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		unlocked, err := m.Service.IsUnlocked(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("entitlement require unlocked", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		if !unlocked {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "purchase required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
