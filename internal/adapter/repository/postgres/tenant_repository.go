package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

// TenantRepository implements domain.TenantRepository on PostgreSQL.
type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, slug, plan, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	return r.scanTenant(r.db.QueryRowContext(ctx, query, id), "find tenant by ID")
}

func (r *TenantRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, slug, plan, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`
	return r.scanTenant(r.db.QueryRowContext(ctx, query, slug), "find tenant by slug")
}

func (r *TenantRepository) scanTenant(row *sql.Row, op string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

func (r *TenantRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan domain.Plan) error {
	query := `
		UPDATE tenants
		SET plan = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, plan)
	if err != nil {
		return fmt.Errorf("update tenant plan: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant plan: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TenantRepository) Store(ctx context.Context, t *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.Slug,
		t.Plan,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store tenant: %w", err)
	}
	return nil
}
