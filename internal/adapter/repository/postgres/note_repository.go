package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

// NoteRepository implements domain.NoteRepository on PostgreSQL.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note. With maxPerTenant > 0 the tenant row is locked
// first, so the count and the insert form one serialized unit per tenant:
// two concurrent creators on a full free tenant cannot both pass the check.
func (r *NoteRepository) Create(ctx context.Context, n *domain.Note, maxPerTenant int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create note: %w", err)
	}
	defer tx.Rollback() // Rollback is a no-op if Commit() is called

	if maxPerTenant > 0 {
		var tenantID uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT id FROM tenants WHERE id = $1 FOR UPDATE`, n.TenantID).Scan(&tenantID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock tenant: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE tenant_id = $1`, n.TenantID).Scan(&count); err != nil {
			return fmt.Errorf("count notes: %w", err)
		}

		if count >= maxPerTenant {
			return &domain.QuotaExceededError{Current: count, Limit: maxPerTenant}
		}
	}

	query := `
		INSERT INTO notes (id, title, content, tenant_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, query,
		n.ID,
		n.Title,
		n.Content,
		n.TenantID,
		n.UserID,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	return tx.Commit()
}

func (r *NoteRepository) FindByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Note, error) {
	query := `
		SELECT n.id, n.title, n.content, n.tenant_id, n.user_id, u.email, n.created_at, n.updated_at
		FROM notes n
		JOIN users u ON n.user_id = u.id
		WHERE n.id = $1 AND n.tenant_id = $2
	`

	var n domain.Note
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&n.ID,
		&n.Title,
		&n.Content,
		&n.TenantID,
		&n.UserID,
		&n.AuthorEmail,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find note by ID: %w", err)
	}
	return &n, nil
}

func (r *NoteRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Note, error) {
	query := `
		SELECT n.id, n.title, n.content, n.tenant_id, n.user_id, u.email, n.created_at, n.updated_at
		FROM notes n
		JOIN users u ON n.user_id = u.id
		WHERE n.tenant_id = $1
		ORDER BY n.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list notes by tenant: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var n domain.Note
		err := rows.Scan(
			&n.ID,
			&n.Title,
			&n.Content,
			&n.TenantID,
			&n.UserID,
			&n.AuthorEmail,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notes by tenant: %w", err)
	}
	return count, nil
}

func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	query := `
		UPDATE notes
		SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND tenant_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, n.ID, n.TenantID, n.Title, n.Content, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
