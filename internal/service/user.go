package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/utils"
)

type userService struct {
	userRepo    repository.UserRepository
	socialRepo  repository.SocialAccountRepository
	companyRepo repository.CompanyRepository
	profiles    ProfileFetcher
}

func NewUserService(userRepo repository.UserRepository, socialRepo repository.SocialAccountRepository,
	companyRepo repository.CompanyRepository, profiles ProfileFetcher) UserService {
	return &userService{
		userRepo:    userRepo,
		socialRepo:  socialRepo,
		companyRepo: companyRepo,
		profiles:    profiles,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.SocialAccounts, err = s.socialRepo.ListByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to list social accounts: %w", err)
	}
	if user.Companies, err = s.companyRepo.ListByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return user, nil
}

// UpdateProfile validates before touching storage; an invalid payload never reaches the repository.
func (s *userService) UpdateProfile(ctx context.Context, userID int32, in domain.ProfileUpdate) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if in.Email != "" {
		if err := utils.ValidateEmail(in.Email); err != nil {
			return nil, validationError("%v", err)
		}
	}
	if in.State != "" {
		if err := utils.ValidateUF(in.State); err != nil {
			return nil, validationError("%v", err)
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	user.Name = in.Name
	if in.Email != "" {
		user.Email = in.Email
	}
	user.Phone = utils.OnlyDigits(in.Phone)
	user.Bio = strings.TrimSpace(in.Bio)
	user.City = strings.TrimSpace(in.City)
	user.State = in.State
	user.Niches = normalizeTags(in.Niches)

	if err := s.userRepo.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// LinkSocialAccount stores the handle as pending and activates it once the provider confirms the profile.
func (s *userService) LinkSocialAccount(ctx context.Context, userID int32, provider domain.SocialProvider, handle string) (*domain.SocialAccount, error) {
	if !provider.Valid() {
		return nil, validationError("provider must be instagram or tiktok")
	}
	handle = domain.NormalizeHandle(handle)
	if handle == "" {
		return nil, validationError("handle is required")
	}

	account := &domain.SocialAccount{
		UserID:   userID,
		Provider: provider,
		Handle:   handle,
		Status:   domain.SocialAccountPending,
	}
	if err := s.socialRepo.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save social account: %w", err)
	}

	profile, err := s.profiles.FetchProfile(ctx, provider, handle, nil)
	if err != nil {
		mapped := providerError(err)
		if errors.Is(mapped, ErrNotFound) {
			_ = s.socialRepo.UpdateStatus(ctx, account.ID, domain.SocialAccountRevoked)
			return nil, validationError("%s profile @%s not found", provider, handle)
		}
		logger.Warn("Social account left pending", "accountID", account.ID, "provider", provider, "error", err)
		return account, nil
	}

	if err := s.socialRepo.UpdateStats(ctx, account.ID, profile.Followers, profile.ExternalID); err != nil {
		return nil, fmt.Errorf("failed to update social account stats: %w", err)
	}
	if err := s.socialRepo.UpdateStatus(ctx, account.ID, domain.SocialAccountActive); err != nil {
		return nil, fmt.Errorf("failed to activate social account: %w", err)
	}
	account.Followers = profile.Followers
	account.ExternalID = profile.ExternalID
	account.Status = domain.SocialAccountActive
	return account, nil
}

func (s *userService) UnlinkSocialAccount(ctx context.Context, userID, accountID int32) error {
	account, err := s.socialRepo.GetByID(ctx, accountID)
	if err != nil {
		return notFound(err, "social account")
	}
	if account.UserID != userID {
		return fmt.Errorf("%w: social account", ErrNotFound)
	}
	return s.socialRepo.UpdateStatus(ctx, accountID, domain.SocialAccountRevoked)
}

// normalizeTags lowercases, trims and de-duplicates niche tags, keeping input order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
