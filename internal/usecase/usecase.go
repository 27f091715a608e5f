package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

// AuthUseCase defines the contract for authentication services.
type AuthUseCase interface {
	// Login verifies credentials and returns a signed token plus the
	// authenticated account.
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	// ResolveToken verifies a bearer token and resolves it to the account it
	// identifies. Stale tokens referencing deleted users fail exactly like
	// invalid ones.
	ResolveToken(ctx context.Context, token string) (*domain.Account, error)
}

// NoteUseCase defines the contract for tenant-scoped note operations.
type NoteUseCase interface {
	Create(ctx context.Context, tenantID, authorID uuid.UUID, plan domain.Plan, title, content string) (*domain.Note, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Note, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Note, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, title, content string) (*domain.Note, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// Usage reports the tenant's current standing against its plan quota.
	Usage(ctx context.Context, tenantID uuid.UUID, plan domain.Plan) (*QuotaDecision, error)
}

// TenantUseCase defines the contract for tenant administration.
type TenantUseCase interface {
	// Upgrade moves a tenant from the free plan to pro. The transition is
	// one-way; upgrading an already-pro tenant is an error, not a no-op.
	Upgrade(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error)
	Info(ctx context.Context, tenantID uuid.UUID, includeUserCount bool) (*TenantInfo, error)
	Users(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error)
}

// TenantInfo aggregates a tenant with its usage figures.
type TenantInfo struct {
	Tenant    *domain.Tenant
	NoteCount int
	NoteLimit *int // nil on the pro plan
	Unlimited bool
	UserCount *int // only populated for admins
}
