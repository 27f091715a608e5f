package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/pkg/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type authService struct {
	userRepo  domain.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(userRepo domain.UserRepository, jwtSecret string, jwtExpiry time.Duration) AuthUseCase {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	account, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !util.CheckPasswordHash(password, account.User.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateToken(account.User.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, account, nil
}

func (s *authService) ResolveToken(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	account, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Stale or forged token referencing a deleted user.
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return account, nil
}
