package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/security"
	"ugc-marketplace-backend/internal/utils"
)

const minPasswordLength = 8

type authService struct {
	userRepo  repository.UserRepository
	tokens    security.TokenManager
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, accessTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		accessTTL: accessTTL,
	}
}

func (s *authService) Register(ctx context.Context, email, password, name string, role domain.UserRole) (*domain.User, *TokenPair, error) {
	logger.EnterMethod("authService.Register", "email", email, "role", role)

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, nil, validationError("%v", err)
	}
	if name == "" {
		return nil, nil, validationError("name is required")
	}
	if len(password) < minPasswordLength {
		return nil, nil, validationError("password must have at least %d characters", minPasswordLength)
	}
	if !role.Valid() {
		return nil, nil, validationError("role must be creator or company")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	logger.ExitMethod("authService.Register", "userID", user.ID)
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		logger.Warn("Login failed", "userID", user.ID)
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil || claims.Type != security.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.issue(user)
}

// Logout is stateless: tokens expire on their own and the client discards them.
func (s *authService) Logout(ctx context.Context, userID int32) error {
	logger.Info("User logged out", "userID", userID)
	return nil
}

func (s *authService) issue(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.accessTTL.Seconds())}, nil
}
