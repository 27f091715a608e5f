package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

// MockUserRepository is an in-memory implementation of domain.UserRepository
// for testing.
type MockUserRepository struct {
	mu       sync.Mutex
	Accounts []*domain.Account
	FindErr  error
	StoreErr error
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, a := range m.Accounts {
		if a.User.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, a := range m.Accounts {
		if strings.EqualFold(a.User.Email, email) {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var users []*domain.User
	for _, a := range m.Accounts {
		if a.User.TenantID == tenantID {
			u := a.User
			users = append(users, &u)
		}
	}
	return users, nil
}

func (m *MockUserRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	users, err := m.ListByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (m *MockUserRepository) Store(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return m.StoreErr
	}
	m.Accounts = append(m.Accounts, &domain.Account{User: *u})
	return nil
}

// MockTenantRepository is an in-memory implementation of
// domain.TenantRepository for testing.
type MockTenantRepository struct {
	mu        sync.Mutex
	Tenants   []*domain.Tenant
	FindErr   error
	UpdateErr error
	StoreErr  error
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, t := range m.Tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTenantRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, t := range m.Tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTenantRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan domain.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for _, t := range m.Tenants {
		if t.ID == id {
			t.Plan = plan
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockTenantRepository) Store(ctx context.Context, t *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return m.StoreErr
	}
	m.Tenants = append(m.Tenants, t)
	return nil
}

// MockNoteRepository is an in-memory implementation of domain.NoteRepository
// for testing. Create honors the maxPerTenant contract so quota behavior can
// be exercised without a database.
type MockNoteRepository struct {
	mu        sync.Mutex
	Notes     []*domain.Note
	CreateErr error
	FindErr   error
	UpdateErr error
	DeleteErr error
}

func (m *MockNoteRepository) Create(ctx context.Context, n *domain.Note, maxPerTenant int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if maxPerTenant > 0 {
		count := 0
		for _, existing := range m.Notes {
			if existing.TenantID == n.TenantID {
				count++
			}
		}
		if count >= maxPerTenant {
			return &domain.QuotaExceededError{Current: count, Limit: maxPerTenant}
		}
	}
	stored := *n
	m.Notes = append(m.Notes, &stored)
	return nil
}

func (m *MockNoteRepository) FindByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, n := range m.Notes {
		if n.ID == id && n.TenantID == tenantID {
			found := *n
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockNoteRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var notes []*domain.Note
	for _, n := range m.Notes {
		if n.TenantID == tenantID {
			found := *n
			notes = append(notes, &found)
		}
	}
	return notes, nil
}

func (m *MockNoteRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	notes, err := m.ListByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return len(notes), nil
}

func (m *MockNoteRepository) Update(ctx context.Context, n *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for _, existing := range m.Notes {
		if existing.ID == n.ID && existing.TenantID == n.TenantID {
			existing.Title = n.Title
			existing.Content = n.Content
			existing.UpdatedAt = n.UpdatedAt
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockNoteRepository) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, n := range m.Notes {
		if n.ID == id && n.TenantID == tenantID {
			m.Notes = append(m.Notes[:i], m.Notes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
