package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is a tenant-owned document. Any user of the owning tenant may modify
// it; authorship is informational only.
type Note struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	TenantID    uuid.UUID `json:"tenant_id"`
	UserID      uuid.UUID `json:"user_id"`
	AuthorEmail string    `json:"author_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QuotaExceededError reports a rejected note creation together with the
// authoritative count observed at decision time.
type QuotaExceededError struct {
	Current int
	Limit   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("note limit reached: %d of %d notes used", e.Current, e.Limit)
}

// NoteRepository defines the interface for note persistence. All reads and
// writes are scoped by tenant ID; a note belonging to another tenant is
// indistinguishable from a missing one.
type NoteRepository interface {
	// Create inserts the note. When maxPerTenant > 0 the insert and the
	// tenant's note count are evaluated in a single transaction holding a
	// lock on the tenant row, and *QuotaExceededError is returned when the
	// count has reached the limit. maxPerTenant <= 0 means unbounded.
	Create(ctx context.Context, n *Note, maxPerTenant int) error
	FindByID(ctx context.Context, id, tenantID uuid.UUID) (*Note, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Note, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
	// Update rewrites title and content. Returns ErrNotFound if the note is
	// absent or owned by another tenant.
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id, tenantID uuid.UUID) error
}
