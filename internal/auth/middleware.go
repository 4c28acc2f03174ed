package auth

import (
	"errors"
	"net/http"

	"github.com/tenaris-admin/tenaris-admin/internal/platform/httpx"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// RequirePrincipal resolves the bearer token into a principal and stores it
// in the request context. Requests without a live session get a 401 problem.
func RequirePrincipal(sessions *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := shared.TokenFromRequest(r)
			if token == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.Localize(r.Header.Get("Accept-Language"), shared.KeyUnauthorized))
				return
			}
			principal, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, shared.ErrSessionNotFound) {
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.Localize(r.Header.Get("Accept-Language"), shared.KeyUnauthorized))
					return
				}
				httpx.RespondError(w, r, shared.NewInternal(shared.KeyInternal, err))
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}
