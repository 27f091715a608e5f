package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/adapter/api/middleware"
	"github.com/user/notes-saas/internal/adapter/metrics"
	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/internal/usecase"
)

// NoteHandler handles tenant-scoped note CRUD.
type NoteHandler struct {
	notes   usecase.NoteUseCase
	logger  *slog.Logger
	metrics *metrics.APIMetrics
}

func NewNoteHandler(notes usecase.NoteUseCase, logger *slog.Logger, m *metrics.APIMetrics) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger, metrics: m}
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.notes.Create(r.Context(), ac.TenantID, ac.UserID, ac.TenantPlan, req.Title, req.Content)
	if err != nil {
		var quotaErr *domain.QuotaExceededError
		switch {
		case errors.Is(err, usecase.ErrTitleRequired):
			writeError(w, http.StatusBadRequest, "title is required")
		case errors.As(err, &quotaErr):
			h.metrics.QuotaDenialsTotal.Inc()
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error":   "note limit reached",
				"message": fmt.Sprintf("Free plan allows a maximum of %d notes. Upgrade to Pro for unlimited notes.", quotaErr.Limit),
				"limit":   quotaErr.Limit,
				"current": quotaErr.Current,
			})
		default:
			h.logger.Error("failed to create note", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"note":    note,
		"message": "note created",
	})
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notes, err := h.notes.List(r.Context(), ac.TenantID)
	if err != nil {
		h.logger.Error("failed to list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if notes == nil {
		notes = []*domain.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"count": len(notes),
	})
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil {
		// An unparseable ID can't name any note; same answer as absence.
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	note, err := h.notes.Get(r.Context(), ac.TenantID, id)
	if err != nil {
		h.respondNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"note": note})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.notes.Update(r.Context(), ac.TenantID, id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, usecase.ErrTitleRequired) {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		h.respondNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"note":    note,
		"message": "note updated",
	})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	if err := h.notes.Delete(r.Context(), ac.TenantID, id); err != nil {
		h.respondNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "note deleted"})
}

// Usage reports the tenant's standing against its plan quota.
func (h *NoteHandler) Usage(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	decision, err := h.notes.Usage(r.Context(), ac.TenantID, ac.TenantPlan)
	if err != nil {
		h.logger.Error("failed to compute note usage", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"current":   decision.Current,
		"limit":     decision.Limit,
		"plan":      ac.TenantPlan,
		"unlimited": decision.Unlimited,
		"remaining": decision.Remaining,
		"canCreate": decision.Allowed,
	})
}

// respondNoteError maps note lookup failures. Cross-tenant notes answer 404
// so callers cannot probe for other tenants' data.
func (h *NoteHandler) respondNoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	h.logger.Error("note operation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
