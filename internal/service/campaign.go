package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type campaignService struct {
	campaignRepo repository.CampaignRepository
	appRepo      repository.ApplicationRepository
	companyRepo  repository.CompanyRepository
	now          func() time.Time
}

func NewCampaignService(campaignRepo repository.CampaignRepository, appRepo repository.ApplicationRepository,
	companyRepo repository.CompanyRepository) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		appRepo:      appRepo,
		companyRepo:  companyRepo,
		now:          time.Now,
	}
}

func (s *campaignService) Create(ctx context.Context, userID, companyID int32, c *domain.Campaign) (*domain.Campaign, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(c); err != nil {
		return nil, err
	}
	c.ID = 0
	c.CompanyID = companyID
	c.CreatedBy = userID
	c.Status = domain.CampaignStatusDraft
	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	logger.InfoContext(ctx, "Campaign created", "campaignID", c.ID, "companyID", companyID)
	return c, nil
}

func (s *campaignService) validate(c *domain.Campaign) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return validationError("title is required")
	}
	if c.BudgetCents < 0 || c.CreatorPaymentCents < 0 {
		return validationError("amounts cannot be negative")
	}
	if c.Slots < 0 {
		return validationError("slots cannot be negative")
	}
	if c.Visibility == "" {
		c.Visibility = domain.CampaignVisibilityPublic
	}
	if c.Visibility != domain.CampaignVisibilityPublic && c.Visibility != domain.CampaignVisibilityInviteOnly {
		return validationError("visibility must be public or invite_only")
	}
	platforms := normalizeTags(c.Platforms)
	for _, p := range platforms {
		if !domain.SocialProvider(p).Valid() {
			return validationError("unsupported platform %q", p)
		}
	}
	c.Platforms = platforms
	c.Niches = normalizeTags(c.Niches)
	if c.Deadline != nil && c.Deadline.Before(s.now()) {
		return validationError("deadline must be in the future")
	}
	return nil
}

// Update edits a draft or paused campaign; the status is changed through the transition methods only.
func (s *campaignService) Update(ctx context.Context, userID, campaignID int32, in *domain.Campaign) (*domain.Campaign, error) {
	current, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Editable() {
		return nil, fmt.Errorf("%w: campaign is %s", ErrInvalidTransition, current.Status)
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	in.ID = current.ID
	in.CompanyID = current.CompanyID
	in.Status = current.Status
	in.CreatedBy = current.CreatedBy
	in.CreatedOn = current.CreatedOn
	if err := s.campaignRepo.Update(ctx, in); err != nil {
		return nil, notFound(err, "campaign")
	}
	return in, nil
}

func (s *campaignService) Publish(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	return s.transition(ctx, userID, campaignID, domain.CampaignStatusDraft, domain.CampaignStatusActive)
}

func (s *campaignService) Pause(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	return s.transition(ctx, userID, campaignID, domain.CampaignStatusActive, domain.CampaignStatusPaused)
}

func (s *campaignService) Resume(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	return s.transition(ctx, userID, campaignID, domain.CampaignStatusPaused, domain.CampaignStatusActive)
}

// Close is the soft delete for campaigns; closed campaigns stay queryable.
func (s *campaignService) Close(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	return s.transition(ctx, userID, campaignID, "", domain.CampaignStatusClosed)
}

// transition moves the campaign to next; from restricts the source status when set.
func (s *campaignService) transition(ctx context.Context, userID, campaignID int32, from, next domain.CampaignStatus) (*domain.Campaign, error) {
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if (from != "" && c.Status != from) || !c.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}
	if next == domain.CampaignStatusActive && c.Deadline != nil && c.Deadline.Before(s.now()) {
		return nil, validationError("deadline has passed")
	}
	if err := s.campaignRepo.UpdateStatus(ctx, c.ID, next); err != nil {
		return nil, notFound(err, "campaign")
	}
	logger.InfoContext(ctx, "Campaign status changed", "campaignID", c.ID, "from", c.Status, "to", next)
	c.Status = next
	return c, nil
}

// Get shows drafts only to company members; everything else is visible to any signed-in user.
func (s *campaignService) Get(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "campaign")
	}
	if c.Status == domain.CampaignStatusDraft {
		if _, err := s.companyRepo.GetMember(ctx, c.CompanyID, userID); err != nil {
			return nil, fmt.Errorf("%w: campaign", ErrNotFound)
		}
	}
	return c, nil
}

func (s *campaignService) ListByCompany(ctx context.Context, userID, companyID int32, status string) ([]domain.Campaign, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	return s.campaignRepo.ListByCompany(ctx, companyID, status)
}

func (s *campaignService) ListOpen(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, int32, error) {
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)
	filter.Niche = strings.ToLower(strings.TrimSpace(filter.Niche))
	filter.Platform = strings.ToLower(strings.TrimSpace(filter.Platform))
	return s.campaignRepo.ListOpen(ctx, filter)
}

func (s *campaignService) Stats(ctx context.Context, userID, campaignID int32) (*domain.CampaignStats, error) {
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	counts, err := s.appRepo.CountByStatus(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	stats := &domain.CampaignStats{CampaignID: campaignID, ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	if c.Slots > 0 {
		left := c.Slots - counts[domain.ApplicationStatusAccepted] - counts[domain.ApplicationStatusCompleted]
		if left < 0 {
			left = 0
		}
		stats.SlotsLeft = &left
	}
	return stats, nil
}

// ownedCampaign loads a campaign and checks userID is a member of the company running it.
func (s *campaignService) ownedCampaign(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	return loadOwnedCampaign(ctx, s.campaignRepo, s.companyRepo, userID, campaignID)
}

func loadOwnedCampaign(ctx context.Context, campaigns repository.CampaignRepository, companies repository.CompanyRepository,
	userID, campaignID int32) (*domain.Campaign, error) {
	c, err := campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "campaign")
	}
	if _, err := requireMember(ctx, companies, c.CompanyID, userID); err != nil {
		return nil, err
	}
	return c, nil
}

// hasFreeSlot reports whether accepted plus completed applications are still under the campaign's slots.
func hasFreeSlot(ctx context.Context, apps repository.ApplicationRepository, c *domain.Campaign) (bool, error) {
	if c.Slots <= 0 {
		return true, nil
	}
	counts, err := apps.CountByStatus(ctx, c.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count applications: %w", err)
	}
	return counts[domain.ApplicationStatusAccepted]+counts[domain.ApplicationStatusCompleted] < c.Slots, nil
}

func clampPage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
