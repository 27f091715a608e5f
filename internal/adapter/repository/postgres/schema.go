package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/pkg/util"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id UUID PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free' CHECK (plan IN ('free', 'pro')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'member')),
		tenant_id UUID NOT NULL REFERENCES tenants (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		tenant_id UUID NOT NULL REFERENCES tenants (id),
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_tenant_id ON notes (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON users (tenant_id)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the demo tenants and users. It is idempotent: rows that
// already exist are left untouched, so restarting the service never resets
// plans or passwords.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	tenants := []struct {
		name string
		slug string
	}{
		{"Acme Corporation", "acme"},
		{"Globex Corporation", "globex"},
	}

	for _, t := range tenants {
		_, err := db.ExecContext(ctx,
			`INSERT INTO tenants (id, name, slug, plan) VALUES ($1, $2, $3, 'free')
			 ON CONFLICT (slug) DO NOTHING`,
			uuid.New(), t.name, t.slug,
		)
		if err != nil {
			return fmt.Errorf("seed tenant %s: %w", t.slug, err)
		}
	}

	tenantID := func(slug string) (uuid.UUID, error) {
		var id uuid.UUID
		err := db.QueryRowContext(ctx, `SELECT id FROM tenants WHERE slug = $1`, slug).Scan(&id)
		return id, err
	}

	acmeID, err := tenantID("acme")
	if err != nil {
		return fmt.Errorf("look up acme tenant: %w", err)
	}
	globexID, err := tenantID("globex")
	if err != nil {
		return fmt.Errorf("look up globex tenant: %w", err)
	}

	passwordHash, err := util.HashPassword("password")
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := []struct {
		email    string
		role     domain.Role
		tenantID uuid.UUID
	}{
		{"admin@acme.test", domain.RoleAdmin, acmeID},
		{"user@acme.test", domain.RoleMember, acmeID},
		{"admin@globex.test", domain.RoleAdmin, globexID},
		{"user@globex.test", domain.RoleMember, globexID},
	}

	for _, u := range users {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, role, tenant_id) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (email) DO NOTHING`,
			uuid.New(), u.email, passwordHash, u.role, u.tenantID,
		)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
	}

	logger.Info("database schema and demo data ready")
	return nil
}
