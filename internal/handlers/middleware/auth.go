package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dinesh751/hms-auth-service/internal/handlers/identityctx"
	"github.com/Dinesh751/hms-auth-service/internal/handlers/render"
	"github.com/Dinesh751/hms-auth-service/internal/logger"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// Paths skipped by the authenticator. Prefix match against the request path.
var DefaultPublicPaths = []string{
	"/api/auth/v1/register",
	"/api/auth/v1/login",
	"/api/auth/v1/refresh-token",
	"/api/auth/v1/logout",
	"/api/auth/v1/health",
	"/error",
	"/metrics",
}

type identityResolver interface {
	ResolveBearer(ctx context.Context, r *http.Request) (models.Identity, error)
}

// Authenticator turns a bearer credential into an authenticated identity in
// the request context. It never rejects a request itself: every outcome,
// including invalid tokens and unknown or disabled accounts, passes the
// request to the next handler, with or without an identity attached.
// Rejection is the job of the authorization middleware below.
func Authenticator(resolver identityResolver, publicPaths []string, l logger.Logger) func(http.Handler) http.Handler {
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}
	if l == nil {
		l = logger.NewNoOp()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Identity may already be attached by an outer authenticator
			if _, ok := identityctx.FromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolver.ResolveBearer(r.Context(), r)
			if err != nil {
				// No identity is not an error at this layer
				l.Debug("request not authenticated", "path", r.URL.Path, "reason", err)
				next.ServeHTTP(w, r)
				return
			}

			// Aborted requests must not carry partially resolved state
			if r.Context().Err() != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := identityctx.New(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that reached the handler without an identity
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityctx.FromContext(r.Context()); !ok {
			render.Fail(w, http.StatusUnauthorized, "Authentication required", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose identity does not carry the role
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityctx.FromContext(r.Context())
			if !ok {
				render.Fail(w, http.StatusUnauthorized, "Authentication required", "Invalid or expired token")
				return
			}
			if id.Role != role {
				render.Fail(w, http.StatusForbidden, "Access denied", "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPublicPath(path string, publicPaths []string) bool {
	for _, prefix := range publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
