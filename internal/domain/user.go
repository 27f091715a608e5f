package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Role defines the permission level of a user within its tenant.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User represents a user account within a tenant.
type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account pairs a user with the tenant it belongs to. Authentication
// resolves tokens to an Account in a single lookup so that tenant slug and
// plan travel with the request context.
type Account struct {
	User   User
	Tenant Tenant
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// FindByID returns the user and its tenant, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindByEmail matches the email case-insensitively.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*User, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
	Store(ctx context.Context, u *User) error
}
