package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

var ErrTitleRequired = errors.New("title is required")

type noteService struct {
	noteRepo  domain.NoteRepository
	freeLimit int
}

// NewNoteService creates a note service enforcing the given free-plan note
// limit.
func NewNoteService(noteRepo domain.NoteRepository, freeLimit int) NoteUseCase {
	return &noteService{
		noteRepo:  noteRepo,
		freeLimit: freeLimit,
	}
}

func (s *noteService) Create(ctx context.Context, tenantID, authorID uuid.UUID, plan domain.Plan, title, content string) (*domain.Note, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now().UTC()
	note := &domain.Note{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		TenantID:  tenantID,
		UserID:    authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The repository counts and inserts under a per-tenant lock, so
	// concurrent free-plan creators cannot jointly exceed the limit.
	limit := s.freeLimit
	if plan == domain.PlanPro {
		limit = 0
	}
	if err := s.noteRepo.Create(ctx, note, limit); err != nil {
		return nil, err
	}

	// Re-read to pick up the author email join.
	return s.noteRepo.FindByID(ctx, note.ID, tenantID)
}

func (s *noteService) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Note, error) {
	return s.noteRepo.ListByTenant(ctx, tenantID)
}

func (s *noteService) Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Note, error) {
	return s.noteRepo.FindByID(ctx, id, tenantID)
}

func (s *noteService) Update(ctx context.Context, tenantID, id uuid.UUID, title, content string) (*domain.Note, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	note := &domain.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		TenantID:  tenantID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	return s.noteRepo.FindByID(ctx, id, tenantID)
}

func (s *noteService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.noteRepo.Delete(ctx, id, tenantID)
}

func (s *noteService) Usage(ctx context.Context, tenantID uuid.UUID, plan domain.Plan) (*QuotaDecision, error) {
	count, err := s.noteRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	decision := DecideQuota(plan, count, s.freeLimit)
	return &decision, nil
}
