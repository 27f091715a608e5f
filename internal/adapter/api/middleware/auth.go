package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/internal/usecase"
)

type contextKey string

const authContextKey contextKey = "auth"

// AuthContext is the authenticated identity attached to the request scope.
// Tenant slug and plan are resolved together with the user so downstream
// handlers never re-query them.
type AuthContext struct {
	UserID     uuid.UUID
	Email      string
	Role       domain.Role
	TenantID   uuid.UUID
	TenantName string
	TenantSlug string
	TenantPlan domain.Plan
}

// FromContext extracts the authenticated identity from the request context.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	return ac, ok
}

// Authenticate is a middleware factory that resolves the bearer token to an
// authenticated context. Missing, malformed, invalid, expired and
// unresolvable tokens all fail with 401.
func Authenticate(auth usecase.AuthUseCase, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "access token required")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				writeError(w, http.StatusUnauthorized, "access token required")
				return
			}

			account, err := auth.ResolveToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, usecase.ErrInvalidToken) {
					writeError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				logger.Error("failed to resolve token", "error", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ac := &AuthContext{
				UserID:     account.User.ID,
				Email:      account.User.Email,
				Role:       account.User.Role,
				TenantID:   account.Tenant.ID,
				TenantName: account.Tenant.Name,
				TenantSlug: account.Tenant.Slug,
				TenantPlan: account.Tenant.Plan,
			}

			ctx := context.WithValue(r.Context(), authContextKey, ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the given roles. It must run after
// Authenticate. The 403 body reports both the required and the actual role.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			for _, role := range roles {
				if ac.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, http.StatusForbidden, map[string]any{
				"error":    "insufficient permissions",
				"required": roles,
				"current":  ac.Role,
			})
		})
	}
}
