package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/userdir/internal/auth"
	"github.com/hongminglow/userdir/internal/http/respond"
)

// TokenVerifier turns an Authorization header value into a verified identity.
type TokenVerifier interface {
	VerifyHeader(header string) (auth.Identity, error)
}

// RequireAuth admits a request only when its bearer token verifies, attaching
// the identity to the request context. Every failure kind produces the same
// 401 response; the specific reason is only logged.
func RequireAuth(verifier TokenVerifier, log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := verifier.VerifyHeader(r.Header.Get("Authorization"))
		if err != nil {
			log.LogAttrs(r.Context(), slog.LevelDebug, "auth denied",
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("path", r.URL.Path),
				slog.String("reason", err.Error()),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="userdir"`)
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}
