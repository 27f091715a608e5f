package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/domain"
)

var ErrAlreadyPro = errors.New("tenant is already on the pro plan")

type tenantService struct {
	tenantRepo domain.TenantRepository
	userRepo   domain.UserRepository
	noteRepo   domain.NoteRepository
	freeLimit  int
}

func NewTenantService(tenantRepo domain.TenantRepository, userRepo domain.UserRepository, noteRepo domain.NoteRepository, freeLimit int) TenantUseCase {
	return &tenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		noteRepo:   noteRepo,
		freeLimit:  freeLimit,
	}
}

func (s *tenantService) Upgrade(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if tenant.Plan == domain.PlanPro {
		return nil, ErrAlreadyPro
	}

	if err := s.tenantRepo.UpdatePlan(ctx, tenantID, domain.PlanPro); err != nil {
		return nil, fmt.Errorf("upgrade tenant: %w", err)
	}

	tenant.Plan = domain.PlanPro
	return tenant, nil
}

func (s *tenantService) Info(ctx context.Context, tenantID uuid.UUID, includeUserCount bool) (*TenantInfo, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	noteCount, err := s.noteRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	decision := DecideQuota(tenant.Plan, noteCount, s.freeLimit)
	info := &TenantInfo{
		Tenant:    tenant,
		NoteCount: noteCount,
		NoteLimit: decision.Limit,
		Unlimited: decision.Unlimited,
	}

	if includeUserCount {
		userCount, err := s.userRepo.CountByTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		info.UserCount = &userCount
	}

	return info, nil
}

func (s *tenantService) Users(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error) {
	return s.userRepo.ListByTenant(ctx, tenantID)
}
