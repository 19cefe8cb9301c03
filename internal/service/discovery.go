package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/cache"
	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

const discoveryStatsTTL = 10 * time.Minute

type discoveryService struct {
	analyticsRepo repository.AnalyticsRepository
	cache         cache.Cache
}

func NewDiscoveryService(analyticsRepo repository.AnalyticsRepository, c cache.Cache) DiscoveryService {
	return &discoveryService{analyticsRepo: analyticsRepo, cache: c}
}

func (s *discoveryService) SearchCreators(ctx context.Context, f domain.CreatorSearchFilter) ([]domain.CreatorSearchResult, int32, error) {
	f.Page, f.PageSize = clampPage(f.Page, f.PageSize)
	f.Query = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(f.Query), "@"))
	f.Niche = strings.ToLower(strings.TrimSpace(f.Niche))
	f.State = strings.ToUpper(strings.TrimSpace(f.State))
	f.City = strings.TrimSpace(f.City)
	f.Platform = strings.ToLower(strings.TrimSpace(f.Platform))

	if f.Platform != "" && !domain.SocialProvider(f.Platform).Valid() {
		return nil, 0, validationError("unsupported platform %q", f.Platform)
	}
	if f.MinFollowers < 0 || f.MaxFollowers < 0 || f.MinEngagement < 0 {
		return nil, 0, validationError("filters cannot be negative")
	}
	if f.MaxFollowers > 0 && f.MinFollowers > f.MaxFollowers {
		return nil, 0, validationError("min_followers is greater than max_followers")
	}

	results, total, err := s.analyticsRepo.SearchCreators(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search creators: %w", err)
	}
	return results, total, nil
}

func (s *discoveryService) Stats(ctx context.Context) (*domain.DiscoveryStats, error) {
	key := cache.Key("discovery", "stats")
	var cached domain.DiscoveryStats
	if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	stats, err := s.analyticsRepo.DiscoveryStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute discovery stats: %w", err)
	}
	if err := s.cache.SetJSON(ctx, key, stats, discoveryStatsTTL); err != nil {
		logger.Warn("Discovery stats cache write failed", "error", err)
	}
	return stats, nil
}
