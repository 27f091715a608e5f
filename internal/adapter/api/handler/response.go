package handler

import (
	"encoding/json"
	"net/http"

	"github.com/user/notes-saas/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// accountBody shapes the user-plus-tenant payload returned by login and
// /auth/me.
func accountBody(a *domain.Account) map[string]any {
	return map[string]any{
		"id":    a.User.ID,
		"email": a.User.Email,
		"role":  a.User.Role,
		"tenant": map[string]any{
			"id":   a.Tenant.ID,
			"name": a.Tenant.Name,
			"slug": a.Tenant.Slug,
			"plan": a.Tenant.Plan,
		},
	}
}
