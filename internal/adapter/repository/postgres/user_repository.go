package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

// UserRepository implements domain.UserRepository on PostgreSQL. Lookups
// join the owning tenant so callers get slug and plan in a single query.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const accountColumns = `
	u.id, u.tenant_id, u.email, u.password_hash, u.role, u.created_at,
	t.id, t.name, t.slug, t.plan, t.created_at, t.updated_at
`

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.User.ID,
		&a.User.TenantID,
		&a.User.Email,
		&a.User.PasswordHash,
		&a.User.Role,
		&a.User.CreatedAt,
		&a.Tenant.ID,
		&a.Tenant.Name,
		&a.Tenant.Slug,
		&a.Tenant.Plan,
		&a.Tenant.CreatedAt,
		&a.Tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users u
		JOIN tenants t ON u.tenant_id = t.id
		WHERE u.id = $1
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by ID: %w", err)
	}
	return account, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users u
		JOIN tenants t ON u.tenant_id = t.id
		WHERE LOWER(u.email) = LOWER($1)
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return account, nil
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, role, created_at
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users by tenant: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *UserRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by tenant: %w", err)
	}
	return count, nil
}

func (r *UserRepository) Store(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.TenantID,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}
