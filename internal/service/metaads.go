package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

// Meta Marketing API objectives accepted for partnership ads.
var adObjectives = map[string]bool{
	"OUTCOME_AWARENESS":  true,
	"OUTCOME_ENGAGEMENT": true,
	"OUTCOME_TRAFFIC":    true,
	"OUTCOME_SALES":      true,
	"OUTCOME_LEADS":      true,
}

type metaAdsService struct {
	adsRepo     repository.MetaAdsRepository
	companyRepo repository.CompanyRepository
	socialRepo  repository.SocialAccountRepository
	ads         AdsAPI
	messenger   *messenger
}

func NewMetaAdsService(adsRepo repository.MetaAdsRepository, companyRepo repository.CompanyRepository,
	socialRepo repository.SocialAccountRepository, ads AdsAPI, notes NotificationService, push PushService) MetaAdsService {
	return &metaAdsService{
		adsRepo:     adsRepo,
		companyRepo: companyRepo,
		socialRepo:  socialRepo,
		ads:         ads,
		messenger:   newMessenger(notes, push),
	}
}

// RequestPartnership asks a creator with an active Instagram account to authorize partnership ads.
func (s *metaAdsService) RequestPartnership(ctx context.Context, userID, companyID, creatorID int32) (*domain.MetaCreatorPartner, error) {
	if _, err := requireManager(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	handle, err := s.instagramHandle(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	existing, err := s.adsRepo.GetPartnerByCreator(ctx, companyID, creatorID)
	switch {
	case err == nil && existing.Status != domain.PartnerStatusRevoked:
		return nil, fmt.Errorf("%w: partnership already %s", ErrConflict, existing.Status)
	case err == nil:
		existing.Status = domain.PartnerStatusPending
		existing.InstagramHandle = handle
		if err := s.adsRepo.UpdatePartner(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to renew partnership: %w", err)
		}
		s.notifyCreator(ctx, existing)
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to load partnership: %w", err)
	}

	p := &domain.MetaCreatorPartner{
		CompanyID:       companyID,
		CreatorID:       creatorID,
		InstagramHandle: handle,
		Status:          domain.PartnerStatusPending,
	}
	if err := s.adsRepo.CreatePartner(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create partnership: %w", err)
	}
	s.notifyCreator(ctx, p)
	return p, nil
}

func (s *metaAdsService) instagramHandle(ctx context.Context, creatorID int32) (string, error) {
	accounts, err := s.socialRepo.ListByUser(ctx, creatorID)
	if err != nil {
		return "", fmt.Errorf("failed to list social accounts: %w", err)
	}
	for _, a := range accounts {
		if a.Provider == domain.ProviderInstagram && a.Status == domain.SocialAccountActive {
			return a.Handle, nil
		}
	}
	return "", validationError("creator has no active instagram account")
}

func (s *metaAdsService) notifyCreator(ctx context.Context, p *domain.MetaCreatorPartner) {
	s.messenger.send(ctx, p.CreatorID, &p.CompanyID, "Pedido de parceria",
		"Uma marca quer impulsionar seus conteúdos com anúncios de parceria",
		map[string]string{"partner_id": fmt.Sprint(p.ID)})
}

func (s *metaAdsService) ApprovePartnership(ctx context.Context, creatorID, partnerID int32) (*domain.MetaCreatorPartner, error) {
	return s.answer(ctx, creatorID, partnerID, domain.PartnerStatusApproved)
}

// RevokePartnership withdraws the creator's authorization and pauses ad campaigns that use it.
func (s *metaAdsService) RevokePartnership(ctx context.Context, creatorID, partnerID int32) (*domain.MetaCreatorPartner, error) {
	p, err := s.answer(ctx, creatorID, partnerID, domain.PartnerStatusRevoked)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.adsRepo.ListCampaigns(ctx, p.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ad campaigns: %w", err)
	}
	for i := range campaigns {
		c := &campaigns[i]
		if c.PartnerID != p.ID || c.Status != domain.AdCampaignActive {
			continue
		}
		if err := s.applyStatus(ctx, c, domain.AdCampaignPaused); err != nil {
			logger.Warn("Failed to pause ad campaign after revoke", "adCampaignID", c.ID, "error", err)
		}
	}
	return p, nil
}

func (s *metaAdsService) answer(ctx context.Context, creatorID, partnerID int32, status domain.PartnerStatus) (*domain.MetaCreatorPartner, error) {
	p, err := s.adsRepo.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, notFound(err, "partnership")
	}
	if p.CreatorID != creatorID {
		return nil, fmt.Errorf("%w: partnership", ErrNotFound)
	}
	if p.Status == status {
		return p, nil
	}
	if p.Status == domain.PartnerStatusRevoked {
		return nil, fmt.Errorf("%w: partnership was revoked", ErrInvalidTransition)
	}
	p.Status = status
	if err := s.adsRepo.UpdatePartner(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update partnership: %w", err)
	}
	return p, nil
}

func (s *metaAdsService) ListPartners(ctx context.Context, userID, companyID int32) ([]domain.MetaCreatorPartner, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	return s.adsRepo.ListPartners(ctx, companyID)
}

func (s *metaAdsService) ListMyPartnerships(ctx context.Context, creatorID int32) ([]domain.MetaCreatorPartner, error) {
	return s.adsRepo.ListPartnersByCreator(ctx, creatorID)
}

// CreateCampaign stores a draft ad campaign; the referenced partner must belong to the company and be approved.
func (s *metaAdsService) CreateCampaign(ctx context.Context, userID, companyID int32, c *domain.MetaAdCampaign) (*domain.MetaAdCampaign, error) {
	if _, err := requireManager(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	if err := validateAdCampaign(c); err != nil {
		return nil, err
	}
	if err := s.requireApprovedPartner(ctx, companyID, c.PartnerID); err != nil {
		return nil, err
	}
	c.ID = 0
	c.CompanyID = companyID
	c.MetaCampaignID = ""
	c.Status = domain.AdCampaignDraft
	if err := s.adsRepo.CreateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create ad campaign: %w", err)
	}
	return c, nil
}

func (s *metaAdsService) UpdateCampaign(ctx context.Context, userID, campaignID int32, in *domain.MetaAdCampaign) (*domain.MetaAdCampaign, error) {
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.AdCampaignDraft && c.Status != domain.AdCampaignPaused {
		return nil, fmt.Errorf("%w: ad campaign is %s", ErrInvalidTransition, c.Status)
	}
	if err := validateAdCampaign(in); err != nil {
		return nil, err
	}
	if in.PartnerID != c.PartnerID {
		if err := s.requireApprovedPartner(ctx, c.CompanyID, in.PartnerID); err != nil {
			return nil, err
		}
	}
	c.PartnerID = in.PartnerID
	c.Name = in.Name
	c.Objective = in.Objective
	c.DailyBudgetCents = in.DailyBudgetCents
	c.StartsAt = in.StartsAt
	c.EndsAt = in.EndsAt
	if err := s.adsRepo.UpdateCampaign(ctx, c); err != nil {
		return nil, notFound(err, "ad campaign")
	}
	return c, nil
}

func (s *metaAdsService) SetCampaignStatus(ctx context.Context, userID, campaignID int32, status domain.AdCampaignStatus) (*domain.MetaAdCampaign, error) {
	if !status.Valid() || status == domain.AdCampaignDraft {
		return nil, validationError("invalid ad campaign status %q", status)
	}
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.AdCampaignArchived {
		return nil, fmt.Errorf("%w: ad campaign is archived", ErrInvalidTransition)
	}
	if status == domain.AdCampaignActive {
		if c.MetaCampaignID == "" {
			return nil, fmt.Errorf("%w: publish the ad campaign first", ErrInvalidTransition)
		}
		if err := s.requireApprovedPartner(ctx, c.CompanyID, c.PartnerID); err != nil {
			return nil, err
		}
	}
	if err := s.applyStatus(ctx, c, status); err != nil {
		return nil, err
	}
	return c, nil
}

// PublishCampaign creates the campaign on the Meta ad account and activates it.
func (s *metaAdsService) PublishCampaign(ctx context.Context, userID, campaignID int32) (*domain.MetaAdCampaign, error) {
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.AdCampaignDraft {
		return nil, fmt.Errorf("%w: ad campaign is %s", ErrInvalidTransition, c.Status)
	}
	if err := s.requireApprovedPartner(ctx, c.CompanyID, c.PartnerID); err != nil {
		return nil, err
	}
	if !s.ads.Configured() {
		return nil, validationError("meta ad account is not configured")
	}

	metaID, err := s.ads.CreateCampaign(ctx, c.Name, c.Objective, c.DailyBudgetCents)
	if err != nil {
		return nil, providerError(err)
	}
	c.MetaCampaignID = metaID
	if err := s.adsRepo.UpdateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store meta campaign id: %w", err)
	}
	if err := s.applyStatus(ctx, c, domain.AdCampaignActive); err != nil {
		return nil, err
	}
	logger.Info("Ad campaign published", "adCampaignID", c.ID, "metaCampaignID", metaID)
	return c, nil
}

// DeleteCampaign archives the campaign; it is never removed from storage.
func (s *metaAdsService) DeleteCampaign(ctx context.Context, userID, campaignID int32) error {
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return err
	}
	if c.Status == domain.AdCampaignArchived {
		return nil
	}
	return s.applyStatus(ctx, c, domain.AdCampaignArchived)
}

func (s *metaAdsService) ListCampaigns(ctx context.Context, userID, companyID int32) ([]domain.MetaAdCampaign, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	return s.adsRepo.ListCampaigns(ctx, companyID)
}

// applyStatus mirrors the status on Meta when the campaign exists there, then stores it.
func (s *metaAdsService) applyStatus(ctx context.Context, c *domain.MetaAdCampaign, status domain.AdCampaignStatus) error {
	if c.MetaCampaignID != "" {
		if err := s.ads.SetCampaignStatus(ctx, c.MetaCampaignID, string(status)); err != nil {
			return providerError(err)
		}
	}
	c.Status = status
	if err := s.adsRepo.UpdateCampaign(ctx, c); err != nil {
		return notFound(err, "ad campaign")
	}
	return nil
}

func (s *metaAdsService) requireApprovedPartner(ctx context.Context, companyID, partnerID int32) error {
	p, err := s.adsRepo.GetPartner(ctx, partnerID)
	if err != nil {
		return notFound(err, "partner")
	}
	if p.CompanyID != companyID {
		return fmt.Errorf("%w: partner", ErrNotFound)
	}
	if p.Status != domain.PartnerStatusApproved {
		return ErrPartnerNotApproved
	}
	return nil
}

func (s *metaAdsService) ownedCampaign(ctx context.Context, userID, campaignID int32) (*domain.MetaAdCampaign, error) {
	c, err := s.adsRepo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "ad campaign")
	}
	if _, err := requireManager(ctx, s.companyRepo, c.CompanyID, userID); err != nil {
		return nil, err
	}
	return c, nil
}

func validateAdCampaign(c *domain.MetaAdCampaign) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Objective = strings.ToUpper(strings.TrimSpace(c.Objective))
	if c.Name == "" {
		return validationError("name is required")
	}
	if c.Objective == "" {
		c.Objective = "OUTCOME_AWARENESS"
	}
	if !adObjectives[c.Objective] {
		return validationError("unsupported objective %q", c.Objective)
	}
	if c.DailyBudgetCents < 100 {
		return validationError("daily budget must be at least 100 cents")
	}
	if c.StartsAt != nil && c.EndsAt != nil && !c.EndsAt.After(*c.StartsAt) {
		return validationError("end must be after start")
	}
	return nil
}
