package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/notes-saas/internal/adapter/api/middleware"
	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/internal/usecase"
)

// TenantHandler handles tenant administration. Every route is slug-scoped
// and verified against the caller's own tenant before anything else: an
// admin of tenant A can never act on tenant B.
type TenantHandler struct {
	tenants usecase.TenantUseCase
	logger  *slog.Logger
}

func NewTenantHandler(tenants usecase.TenantUseCase, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenants: tenants, logger: logger}
}

// requireOwnSlug enforces the tenant-ownership gate. Returns the auth
// context only when the path slug matches the caller's tenant.
func (h *TenantHandler) requireOwnSlug(w http.ResponseWriter, r *http.Request) (*middleware.AuthContext, bool) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	if chi.URLParam(r, "slug") != ac.TenantSlug {
		writeError(w, http.StatusForbidden, "you may only act on your own tenant")
		return nil, false
	}

	return ac, true
}

func (h *TenantHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	ac, ok := h.requireOwnSlug(w, r)
	if !ok {
		return
	}

	tenant, err := h.tenants.Upgrade(r.Context(), ac.TenantID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAlreadyPro):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":       "tenant is already on the pro plan",
				"currentPlan": domain.PlanPro,
			})
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		default:
			h.logger.Error("failed to upgrade tenant", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "tenant upgraded to the pro plan",
		"tenant": map[string]any{
			"id":           tenant.ID,
			"name":         tenant.Name,
			"slug":         tenant.Slug,
			"plan":         tenant.Plan,
			"previousPlan": domain.PlanFree,
		},
	})
}

func (h *TenantHandler) Info(w http.ResponseWriter, r *http.Request) {
	ac, ok := h.requireOwnSlug(w, r)
	if !ok {
		return
	}

	info, err := h.tenants.Info(r.Context(), ac.TenantID, ac.Role == domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		h.logger.Error("failed to load tenant info", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	body := map[string]any{
		"id":         info.Tenant.ID,
		"name":       info.Tenant.Name,
		"slug":       info.Tenant.Slug,
		"plan":       info.Tenant.Plan,
		"created_at": info.Tenant.CreatedAt,
		"noteCount":  info.NoteCount,
		"noteLimit":  info.NoteLimit,
		"unlimited":  info.Unlimited,
	}
	if info.UserCount != nil {
		body["userCount"] = *info.UserCount
	}

	writeJSON(w, http.StatusOK, map[string]any{"tenant": body})
}

func (h *TenantHandler) Users(w http.ResponseWriter, r *http.Request) {
	ac, ok := h.requireOwnSlug(w, r)
	if !ok {
		return
	}

	users, err := h.tenants.Users(r.Context(), ac.TenantID)
	if err != nil {
		h.logger.Error("failed to list tenant users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if users == nil {
		users = []*domain.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// Invite verifies the admin and slug gates but the invitation flow itself
// is not built yet.
func (h *TenantHandler) Invite(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireOwnSlug(w, r); !ok {
		return
	}

	writeError(w, http.StatusNotImplemented, "user invitation is not implemented")
}
