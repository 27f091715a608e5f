package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/user/notes-saas/internal/adapter/api/middleware"
	"github.com/user/notes-saas/internal/adapter/metrics"
	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/internal/usecase"
)

// AuthHandler handles login and identity introspection.
type AuthHandler struct {
	auth    usecase.AuthUseCase
	logger  *slog.Logger
	metrics *metrics.APIMetrics
}

func NewAuthHandler(auth usecase.AuthUseCase, logger *slog.Logger, m *metrics.APIMetrics) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger, metrics: m}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, account, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  accountBody(account),
	})
}

// Me reports the identity behind the presented token. The auth middleware
// has already resolved it; this endpoint just echoes the context back.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": accountBody(&domain.Account{
			User: domain.User{
				ID:       ac.UserID,
				TenantID: ac.TenantID,
				Email:    ac.Email,
				Role:     ac.Role,
			},
			Tenant: domain.Tenant{
				ID:   ac.TenantID,
				Name: ac.TenantName,
				Slug: ac.TenantSlug,
				Plan: ac.TenantPlan,
			},
		}),
	})
}
