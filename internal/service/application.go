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
	"ugc-marketplace-backend/internal/utils"
)

// pointsPerCompletion is awarded in the brand community when a campaign delivery is completed.
const pointsPerCompletion int64 = 100

type applicationService struct {
	appRepo      repository.ApplicationRepository
	campaignRepo repository.CampaignRepository
	companyRepo  repository.CompanyRepository
	userRepo     repository.UserRepository
	inviteRepo   repository.InviteRepository
	community    CommunityService
	email        EmailService
	messenger    *messenger
}

func NewApplicationService(appRepo repository.ApplicationRepository, campaignRepo repository.CampaignRepository,
	companyRepo repository.CompanyRepository, userRepo repository.UserRepository, inviteRepo repository.InviteRepository,
	community CommunityService, notes NotificationService, email EmailService,
	push PushService) ApplicationService {
	return &applicationService{
		appRepo:      appRepo,
		campaignRepo: campaignRepo,
		companyRepo:  companyRepo,
		userRepo:     userRepo,
		inviteRepo:   inviteRepo,
		community:    community,
		email:        email,
		messenger:    newMessenger(notes, push),
	}
}

func (s *applicationService) Apply(ctx context.Context, creatorID, campaignID int32, pitch string, proposedCents int64) (*domain.Application, error) {
	logger.EnterMethod("applicationService.Apply", "creatorID", creatorID, "campaignID", campaignID)

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if creator.Role != domain.UserRoleCreator {
		return nil, fmt.Errorf("%w: only creators can apply", ErrForbidden)
	}
	if proposedCents < 0 {
		return nil, validationError("proposed amount cannot be negative")
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "campaign")
	}
	if campaign.Status != domain.CampaignStatusActive {
		return nil, ErrCampaignNotActive
	}

	var inviteID *int32
	if campaign.Visibility == domain.CampaignVisibilityInviteOnly {
		invite, err := s.inviteRepo.GetPending(ctx, campaignID, creatorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: campaign is invite only", ErrForbidden)
			}
			return nil, fmt.Errorf("failed to check invite: %w", err)
		}
		inviteID = &invite.ID
	}

	if _, err := s.appRepo.GetByCampaignAndCreator(ctx, campaignID, creatorID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}

	free, err := hasFreeSlot(ctx, s.appRepo, campaign)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrCampaignFull
	}

	app := &domain.Application{
		CampaignID:    campaignID,
		CreatorID:     creatorID,
		Pitch:         strings.TrimSpace(pitch),
		ProposedCents: proposedCents,
		InviteID:      inviteID,
		Status:        domain.ApplicationStatusPending,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.notifyCompany(ctx, campaign, "Nova candidatura",
		fmt.Sprintf("%s se candidatou à campanha %s", creator.Name, campaign.Title),
		map[string]string{"application_id": fmt.Sprint(app.ID), "campaign_id": fmt.Sprint(campaign.ID)})

	logger.ExitMethod("applicationService.Apply", "applicationID", app.ID)
	return app, nil
}

func (s *applicationService) Withdraw(ctx context.Context, creatorID, applicationID int32) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFound(err, "application")
	}
	if app.CreatorID != creatorID {
		return nil, fmt.Errorf("%w: application", ErrNotFound)
	}
	return s.move(ctx, app, domain.ApplicationStatusPending, domain.ApplicationStatusWithdrawn, nil)
}

// Accept takes a slot; accepted plus completed applications never exceed the campaign's slots.
func (s *applicationService) Accept(ctx context.Context, userID, applicationID int32) (*domain.Application, error) {
	app, campaign, err := s.companyApplication(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusPending {
		return nil, fmt.Errorf("%w: application is %s", ErrInvalidTransition, app.Status)
	}
	if err := s.appRepo.Accept(ctx, app, userID); err != nil {
		return nil, transitionError(err, "accept application")
	}
	app.Status = domain.ApplicationStatusAccepted
	app.DecidedBy = &userID
	s.notifyDecision(ctx, app, campaign, true)
	return app, nil
}

func (s *applicationService) Reject(ctx context.Context, userID, applicationID int32) (*domain.Application, error) {
	app, campaign, err := s.companyApplication(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.move(ctx, app, domain.ApplicationStatusPending, domain.ApplicationStatusRejected, &userID); err != nil {
		return nil, err
	}
	s.notifyDecision(ctx, app, campaign, false)
	return app, nil
}

// Complete closes an accepted delivery: an approved commission is credited to the creator's
// wallet and, if the creator belongs to the brand community, points are awarded.
func (s *applicationService) Complete(ctx context.Context, userID, applicationID int32) (*domain.Application, error) {
	app, campaign, err := s.companyApplication(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusAccepted {
		return nil, fmt.Errorf("%w: application is %s", ErrInvalidTransition, app.Status)
	}

	amount := app.ProposedCents
	if amount == 0 {
		amount = campaign.CreatorPaymentCents
	}
	var commission *domain.Commission
	var credit *domain.WalletTransaction
	if amount > 0 {
		commission = &domain.Commission{
			CreatorID:     app.CreatorID,
			CompanyID:     campaign.CompanyID,
			CampaignID:    campaign.ID,
			ApplicationID: app.ID,
			AmountCents:   amount,
			Status:        domain.CommissionStatusApproved,
		}
		credit = &domain.WalletTransaction{
			UserID:      app.CreatorID,
			AmountCents: amount,
			Type:        domain.WalletTxCommission,
			Description: fmt.Sprintf("Comissão: %s", campaign.Title),
		}
	}
	if err := s.appRepo.Complete(ctx, app.ID, userID, commission, credit); err != nil {
		return nil, transitionError(err, "complete application")
	}
	app.Status = domain.ApplicationStatusCompleted
	app.DecidedBy = &userID

	if s.community != nil {
		_, err := s.community.AwardPoints(ctx, userID, campaign.CompanyID, app.CreatorID, pointsPerCompletion,
			"campaign_completed", fmt.Sprintf("application:%d", app.ID))
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
			logger.WarnContext(ctx, "Failed to award community points", "applicationID", app.ID, "error", err)
		}
	}

	s.messenger.send(ctx, app.CreatorID, &campaign.CompanyID, "Entrega concluída",
		fmt.Sprintf("Sua entrega para %s foi concluída. %s creditados na carteira.", campaign.Title, utils.FormatBRL(amount)),
		map[string]string{"application_id": fmt.Sprint(app.ID)})
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, userID, applicationID int32) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFound(err, "application")
	}
	if app.CreatorID == userID {
		return app, nil
	}
	if _, _, err := s.companyApplication(ctx, userID, applicationID); err != nil {
		return nil, fmt.Errorf("%w: application", ErrNotFound)
	}
	return app, nil
}

func (s *applicationService) ListMine(ctx context.Context, creatorID int32, status string) ([]domain.Application, error) {
	return s.appRepo.ListByCreator(ctx, creatorID, status)
}

func (s *applicationService) ListByCampaign(ctx context.Context, userID, campaignID int32, status string) ([]domain.Application, error) {
	if _, err := loadOwnedCampaign(ctx, s.campaignRepo, s.companyRepo, userID, campaignID); err != nil {
		return nil, err
	}
	return s.appRepo.ListByCampaign(ctx, campaignID, status)
}

// companyApplication loads an application and checks userID belongs to the company running its campaign.
func (s *applicationService) companyApplication(ctx context.Context, userID, applicationID int32) (*domain.Application, *domain.Campaign, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, notFound(err, "application")
	}
	campaign, err := loadOwnedCampaign(ctx, s.campaignRepo, s.companyRepo, userID, app.CampaignID)
	if err != nil {
		return nil, nil, err
	}
	return app, campaign, nil
}

// move applies a status change guarded by the expected current status.
func (s *applicationService) move(ctx context.Context, app *domain.Application, from, to domain.ApplicationStatus, decidedBy *int32) (*domain.Application, error) {
	if app.Status != from {
		return nil, fmt.Errorf("%w: application is %s", ErrInvalidTransition, app.Status)
	}
	if err := s.appRepo.UpdateStatus(ctx, app.ID, from, to, decidedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: application changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	app.Status = to
	if decidedBy != nil {
		app.DecidedBy = decidedBy
	}
	return app, nil
}

// transitionError maps a lost status race to ErrInvalidTransition and a full campaign to ErrCampaignFull.
func transitionError(err error, op string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: application changed concurrently", ErrInvalidTransition)
	case errors.Is(err, repository.ErrNoFreeSlot):
		return ErrCampaignFull
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *applicationService) notifyDecision(ctx context.Context, app *domain.Application, campaign *domain.Campaign, accepted bool) {
	title, verb := "Candidatura recusada", "foi recusada"
	if accepted {
		title, verb = "Candidatura aceita", "foi aceita"
	}
	s.messenger.send(ctx, app.CreatorID, &campaign.CompanyID, title,
		fmt.Sprintf("Sua candidatura para %s %s.", campaign.Title, verb),
		map[string]string{"application_id": fmt.Sprint(app.ID), "status": string(app.Status)})

	creator, err := s.userRepo.GetByID(ctx, app.CreatorID)
	if err != nil {
		logger.Warn("Failed to load creator for decision email", "creatorID", app.CreatorID, "error", err)
		return
	}
	if err := s.email.SendApplicationDecision(ctx, creator.Email, creator.Name, campaign.Title, accepted); err != nil {
		logger.Warn("Failed to send decision email", "applicationID", app.ID, "error", err)
	}
}

func (s *applicationService) notifyCompany(ctx context.Context, campaign *domain.Campaign, title, message string, attrs map[string]string) {
	members, err := s.companyRepo.ListMembers(ctx, campaign.CompanyID)
	if err != nil {
		logger.Warn("Failed to list company members", "companyID", campaign.CompanyID, "error", err)
		return
	}
	for _, m := range members {
		s.messenger.send(ctx, m.UserID, &campaign.CompanyID, title, message, attrs)
	}
}
