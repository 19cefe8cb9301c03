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
)

type inviteService struct {
	inviteRepo   repository.InviteRepository
	appRepo      repository.ApplicationRepository
	campaignRepo repository.CampaignRepository
	companyRepo  repository.CompanyRepository
	userRepo     repository.UserRepository
	email        EmailService
	messenger    *messenger
	now          func() time.Time
}

func NewInviteService(inviteRepo repository.InviteRepository, appRepo repository.ApplicationRepository,
	campaignRepo repository.CampaignRepository, companyRepo repository.CompanyRepository, userRepo repository.UserRepository,
	notes NotificationService, email EmailService, push PushService) InviteService {
	return &inviteService{
		inviteRepo:   inviteRepo,
		appRepo:      appRepo,
		campaignRepo: campaignRepo,
		companyRepo:  companyRepo,
		userRepo:     userRepo,
		email:        email,
		messenger:    newMessenger(notes, push),
		now:          time.Now,
	}
}

func (s *inviteService) Send(ctx context.Context, userID, campaignID, creatorID int32, message string) (*domain.CampaignInvite, error) {
	campaign, err := loadOwnedCampaign(ctx, s.campaignRepo, s.companyRepo, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignStatusActive {
		return nil, ErrCampaignNotActive
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err, "creator")
	}
	if creator.Role != domain.UserRoleCreator {
		return nil, validationError("invites can only be sent to creators")
	}

	if _, err := s.inviteRepo.GetPending(ctx, campaignID, creatorID); err == nil {
		return nil, ErrDuplicateInvite
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check pending invite: %w", err)
	}
	if app, err := s.appRepo.GetByCampaignAndCreator(ctx, campaignID, creatorID); err == nil && app.Status != domain.ApplicationStatusPending {
		return nil, fmt.Errorf("%w: creator already has a %s application", ErrConflict, app.Status)
	}

	now := s.now().UTC()
	invite := &domain.CampaignInvite{
		CampaignID: campaignID,
		CompanyID:  campaign.CompanyID,
		CreatorID:  creatorID,
		Message:    strings.TrimSpace(message),
		Status:     domain.InviteStatusPending,
		SentBy:     userID,
		ExpiresAt:  now.Add(domain.InviteTTL),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateInvite
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	companyName := ""
	if company, err := s.companyRepo.GetByID(ctx, campaign.CompanyID); err == nil {
		companyName = company.TradeName
	}
	s.messenger.send(ctx, creatorID, &campaign.CompanyID, "Novo convite",
		fmt.Sprintf("%s convidou você para a campanha %s", companyName, campaign.Title),
		map[string]string{"invite_id": fmt.Sprint(invite.ID), "campaign_id": fmt.Sprint(campaignID)})
	if err := s.email.SendInvite(ctx, creator.Email, creator.Name, companyName, campaign.Title); err != nil {
		logger.Warn("Failed to send invite email", "inviteID", invite.ID, "error", err)
	}
	return invite, nil
}

func (s *inviteService) ListPending(ctx context.Context, creatorID int32) ([]domain.CampaignInvite, error) {
	return s.inviteRepo.ListPendingByCreator(ctx, creatorID, s.now().UTC())
}

// Accept closes the invite and returns the creator's accepted application for the campaign,
// promoting a pending application or creating a new one.
func (s *inviteService) Accept(ctx context.Context, creatorID, inviteID int32) (*domain.Application, error) {
	logger.EnterMethod("inviteService.Accept", "creatorID", creatorID, "inviteID", inviteID)

	invite, err := s.ownInvite(ctx, creatorID, inviteID)
	if err != nil {
		return nil, err
	}
	campaign, err := s.campaignRepo.GetByID(ctx, invite.CampaignID)
	if err != nil {
		return nil, notFound(err, "campaign")
	}
	if campaign.Status != domain.CampaignStatusActive {
		return nil, ErrCampaignNotActive
	}

	existing, err := s.appRepo.GetByCampaignAndCreator(ctx, invite.CampaignID, creatorID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil && existing.Status != domain.ApplicationStatusPending && existing.Status != domain.ApplicationStatusAccepted {
		return nil, fmt.Errorf("%w: application is %s", ErrConflict, existing.Status)
	}

	app := existing
	if app == nil {
		app = &domain.Application{
			CampaignID:    campaign.ID,
			CreatorID:     creatorID,
			ProposedCents: campaign.CreatorPaymentCents,
			InviteID:      &invite.ID,
			Status:        domain.ApplicationStatusAccepted,
		}
	}
	if app.Status == domain.ApplicationStatusPending || app.ID == 0 {
		app.DecidedBy = &invite.SentBy
	}
	if err := s.inviteRepo.Accept(ctx, invite.ID, app); err != nil {
		switch {
		case errors.Is(err, repository.ErrInviteNotPending):
			return nil, ErrInviteClosed
		case errors.Is(err, repository.ErrNoFreeSlot):
			return nil, ErrCampaignFull
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%w: application changed concurrently", ErrInvalidTransition)
		case isUniqueViolation(err):
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	app.Status = domain.ApplicationStatusAccepted

	s.messenger.send(ctx, invite.SentBy, &invite.CompanyID, "Convite aceito",
		fmt.Sprintf("Um criador aceitou o convite para %s", campaign.Title),
		map[string]string{"invite_id": fmt.Sprint(invite.ID), "application_id": fmt.Sprint(app.ID)})

	logger.ExitMethod("inviteService.Accept", "applicationID", app.ID)
	return app, nil
}

func (s *inviteService) Decline(ctx context.Context, creatorID, inviteID int32) (*domain.CampaignInvite, error) {
	invite, err := s.ownInvite(ctx, creatorID, inviteID)
	if err != nil {
		return nil, err
	}
	if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, domain.InviteStatusDeclined); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteClosed
		}
		return nil, fmt.Errorf("failed to decline invite: %w", err)
	}
	invite.Status = domain.InviteStatusDeclined
	return invite, nil
}

func (s *inviteService) ListByCampaign(ctx context.Context, userID, campaignID int32) ([]domain.CampaignInvite, error) {
	if _, err := loadOwnedCampaign(ctx, s.campaignRepo, s.companyRepo, userID, campaignID); err != nil {
		return nil, err
	}
	return s.inviteRepo.ListByCampaign(ctx, campaignID)
}

func (s *inviteService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.inviteRepo.ExpireStale(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire invites: %w", err)
	}
	return n, nil
}

// ownInvite loads an invite addressed to creatorID that can still be answered.
func (s *inviteService) ownInvite(ctx context.Context, creatorID, inviteID int32) (*domain.CampaignInvite, error) {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return nil, notFound(err, "invite")
	}
	if invite.CreatorID != creatorID {
		return nil, fmt.Errorf("%w: invite", ErrNotFound)
	}
	if !invite.IsOpen(s.now()) {
		return nil, ErrInviteClosed
	}
	return invite, nil
}
