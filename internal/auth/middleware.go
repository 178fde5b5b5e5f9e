package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/teamroom-io/teamroom/internal/platform/httpx"
	"github.com/teamroom-io/teamroom/internal/shared"
)

const bearerPrefix = "Bearer "

// Middleware resolves the bearer token into a request principal. Requests
// without an Authorization header pass through anonymously; a present but
// invalid token is rejected with 401.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(header, bearerPrefix) {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			principal, err := service.Resolve(r.Context(), header[len(bearerPrefix):])
			if err != nil {
				if logger != nil {
					logger.Warn("token resolution failed", slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequirePrincipal extracts the principal or fails with ErrUnauthenticated.
func RequirePrincipal(r *http.Request) (*shared.Principal, error) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		return nil, shared.ErrUnauthenticated
	}
	return principal, nil
}
