package service

import (
	"context"
	"fmt"
	"time"

	"ugc-marketplace-backend/internal/cache"
	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/utils"
)

const historyLimit = 30

// AnalyticsLimits configures the per-company provider quota and snapshot cache lifetime.
type AnalyticsLimits struct {
	PerWindow int
	Window    time.Duration
	CacheTTL  time.Duration
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	socialRepo    repository.SocialAccountRepository
	companyRepo   repository.CompanyRepository
	profiles      ProfileFetcher
	cache         cache.Cache
	limiter       cache.RateLimiter
	limits        AnalyticsLimits
	now           func() time.Time
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, socialRepo repository.SocialAccountRepository,
	companyRepo repository.CompanyRepository, profiles ProfileFetcher, c cache.Cache, limiter cache.RateLimiter,
	limits AnalyticsLimits) AnalyticsService {
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		socialRepo:    socialRepo,
		companyRepo:   companyRepo,
		profiles:      profiles,
		cache:         c,
		limiter:       limiter,
		limits:        limits,
		now:           time.Now,
	}
}

func (s *analyticsService) AnalyzeInstagram(ctx context.Context, companyID int32, handle string) (*domain.AnalyticsSnapshot, error) {
	return s.analyze(ctx, companyID, domain.ProviderInstagram, handle)
}

func (s *analyticsService) AnalyzeTikTok(ctx context.Context, companyID int32, handle string) (*domain.AnalyticsSnapshot, error) {
	return s.analyze(ctx, companyID, domain.ProviderTikTok, handle)
}

// analyze serves a cached snapshot when fresh; otherwise it spends one unit of the company's
// quota on the provider, persists the computed snapshot and caches it.
func (s *analyticsService) analyze(ctx context.Context, companyID int32, provider domain.SocialProvider, handle string) (*domain.AnalyticsSnapshot, error) {
	handle = domain.NormalizeHandle(handle)
	if handle == "" {
		return nil, validationError("handle is required")
	}
	key := cache.Key("analytics", string(provider), handle)

	var cached domain.AnalyticsSnapshot
	if found, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Warn("Analytics cache read failed", "key", key, "error", err)
	} else if found {
		return &cached, nil
	}

	allowed, err := s.limiter.Allow(ctx, cache.Key("ratelimit", "analytics", fmt.Sprint(companyID)), s.limits.PerWindow, s.limits.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		logger.Warn("Analytics rate limit reached", "companyID", companyID)
		return nil, ErrRateLimited
	}

	var company *domain.Company
	if companyID > 0 {
		if company, err = s.companyRepo.GetByID(ctx, companyID); err != nil {
			return nil, notFound(err, "company")
		}
	}

	profile, err := s.profiles.FetchProfile(ctx, provider, handle, company)
	if err != nil {
		return nil, providerError(err)
	}
	snap := utils.ComputeSnapshot(*profile, s.now())
	if err := s.analyticsRepo.CreateSnapshot(ctx, &snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := s.cache.SetJSON(ctx, key, snap, s.limits.CacheTTL); err != nil {
		logger.Warn("Analytics cache write failed", "key", key, "error", err)
	}
	return &snap, nil
}

func (s *analyticsService) History(ctx context.Context, provider domain.SocialProvider, handle string) ([]domain.AnalyticsSnapshot, error) {
	if !provider.Valid() {
		return nil, validationError("provider must be instagram or tiktok")
	}
	return s.analyticsRepo.History(ctx, provider, domain.NormalizeHandle(handle), historyLimit)
}

// RefreshAccount re-snapshots a linked account outside the per-company quota.
func (s *analyticsService) RefreshAccount(ctx context.Context, account domain.SocialAccount) (*domain.AnalyticsSnapshot, error) {
	profile, err := s.profiles.FetchProfile(ctx, account.Provider, account.Handle, nil)
	if err != nil {
		return nil, providerError(err)
	}
	snap := utils.ComputeSnapshot(*profile, s.now())
	snap.SocialAccountID = &account.ID
	if err := s.analyticsRepo.CreateSnapshot(ctx, &snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := s.socialRepo.UpdateStats(ctx, account.ID, profile.Followers, profile.ExternalID); err != nil {
		return nil, fmt.Errorf("failed to update account stats: %w", err)
	}
	if err := s.cache.SetJSON(ctx, cache.Key("analytics", string(account.Provider), account.Handle), snap, s.limits.CacheTTL); err != nil {
		logger.Warn("Analytics cache write failed", "accountID", account.ID, "error", err)
	}
	return &snap, nil
}

type profileFetcher struct {
	instagram           InstagramAPI
	tiktok              TikTokAPI
	instagramBusinessID string
	instagramToken      string
}

// NewProfileFetcher routes profile lookups to the provider client. Instagram business_discovery
// needs a business account; the platform one is used unless the company brings its own.
func NewProfileFetcher(instagram InstagramAPI, tiktok TikTokAPI, instagramBusinessID, instagramToken string) ProfileFetcher {
	return &profileFetcher{
		instagram:           instagram,
		tiktok:              tiktok,
		instagramBusinessID: instagramBusinessID,
		instagramToken:      instagramToken,
	}
}

func (f *profileFetcher) FetchProfile(ctx context.Context, provider domain.SocialProvider, handle string, company *domain.Company) (*domain.ProviderProfile, error) {
	switch provider {
	case domain.ProviderInstagram:
		businessID, token := f.instagramBusinessID, f.instagramToken
		if company != nil && company.InstagramBusinessID != "" && company.InstagramAccessToken != "" {
			businessID, token = company.InstagramBusinessID, company.InstagramAccessToken
		}
		if businessID == "" || token == "" {
			return nil, validationError("instagram credentials are not configured")
		}
		return f.instagram.BusinessDiscovery(ctx, businessID, token, handle)
	case domain.ProviderTikTok:
		return f.tiktok.Profile(ctx, handle)
	}
	return nil, validationError("unsupported provider %q", provider)
}
