package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	dErrors "adjudicator/pkg/domain-errors"
	"adjudicator/pkg/platform/httputil"
	"adjudicator/pkg/requestcontext"
)

// HeaderAPIKey carries the shared API token as an alternative to a bearer
// Authorization header.
const HeaderAPIKey = "X-API-Key"

// RequireAPIToken rejects requests that do not present token. An empty token
// disables the check.
func RequireAPIToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := presentedToken(r)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				ctx := r.Context()
				reason := "invalid token"
				if got == "" {
					reason = "missing token"
				}
				logger.WarnContext(ctx, "unauthorized access - "+reason,
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid API token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(r.Header.Get(HeaderAPIKey))
}
