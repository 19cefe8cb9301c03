package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/service"
)

type MockCommunityService struct {
	mock.Mock
	service.CommunityService
}

func (m *MockCommunityService) AwardPoints(ctx context.Context, userID, companyID, creatorID int32, delta int64, reason, reference string) (*domain.CommunityMembership, error) {
	args := m.Called(ctx, userID, companyID, creatorID, delta, reason, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommunityMembership), args.Error(1)
}

type applicationFixture struct {
	apps      *MockApplicationRepo
	campaigns *MockCampaignRepo
	companies *MockCompanyRepo
	users     *MockUserRepo
	invites   *MockInviteRepo
	community *MockCommunityService
	email     *MockEmailService
	svc       service.ApplicationService
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		apps:      new(MockApplicationRepo),
		campaigns: new(MockCampaignRepo),
		companies: new(MockCompanyRepo),
		users:     new(MockUserRepo),
		invites:   new(MockInviteRepo),
		community: new(MockCommunityService),
		email:     new(MockEmailService),
	}
	f.svc = service.NewApplicationService(f.apps, f.campaigns, f.companies, f.users, f.invites, f.community, nil, f.email, nil)
	return f
}

func TestApplicationService_Apply(t *testing.T) {
	ctx := context.Background()
	creator := &domain.User{ID: 7, Name: "Ana", Role: domain.UserRoleCreator}
	active := &domain.Campaign{ID: 5, CompanyID: 3, Title: "Verão", Status: domain.CampaignStatusActive, Visibility: domain.CampaignVisibilityPublic}

	t.Run("Success", func(t *testing.T) {
		f := newApplicationFixture()
		f.users.On("GetByID", mock.Anything, int32(7)).Return(creator, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(active, nil)
		f.apps.On("GetByCampaignAndCreator", mock.Anything, int32(5), int32(7)).Return(nil, sql.ErrNoRows)
		f.apps.On("Create", mock.Anything, mock.AnythingOfType("*domain.Application")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Application).ID = 11
		}).Return(nil)
		f.companies.On("ListMembers", mock.Anything, int32(3)).Return([]domain.CompanyMember{}, nil)

		app, err := f.svc.Apply(ctx, 7, 5, "  quero participar ", 50000)
		require.NoError(t, err)
		assert.Equal(t, int32(11), app.ID)
		assert.Equal(t, domain.ApplicationStatusPending, app.Status)
		assert.Equal(t, "quero participar", app.Pitch)
	})

	t.Run("Duplicate Application", func(t *testing.T) {
		f := newApplicationFixture()
		f.users.On("GetByID", mock.Anything, int32(7)).Return(creator, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(active, nil)
		f.apps.On("GetByCampaignAndCreator", mock.Anything, int32(5), int32(7)).Return(&domain.Application{ID: 9}, nil)

		_, err := f.svc.Apply(ctx, 7, 5, "", 0)
		assert.ErrorIs(t, err, service.ErrAlreadyApplied)
		assert.ErrorIs(t, err, service.ErrConflict)
		f.apps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Campaign Not Active", func(t *testing.T) {
		f := newApplicationFixture()
		paused := *active
		paused.Status = domain.CampaignStatusPaused
		f.users.On("GetByID", mock.Anything, int32(7)).Return(creator, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(&paused, nil)

		_, err := f.svc.Apply(ctx, 7, 5, "", 0)
		assert.ErrorIs(t, err, service.ErrCampaignNotActive)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("Invite Only Without Invite", func(t *testing.T) {
		f := newApplicationFixture()
		private := *active
		private.Visibility = domain.CampaignVisibilityInviteOnly
		f.users.On("GetByID", mock.Anything, int32(7)).Return(creator, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(&private, nil)
		f.invites.On("GetPending", mock.Anything, int32(5), int32(7)).Return(nil, sql.ErrNoRows)

		_, err := f.svc.Apply(ctx, 7, 5, "", 0)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("Company Account Cannot Apply", func(t *testing.T) {
		f := newApplicationFixture()
		f.users.On("GetByID", mock.Anything, int32(2)).Return(&domain.User{ID: 2, Role: domain.UserRoleCompany}, nil)

		_, err := f.svc.Apply(ctx, 2, 5, "", 0)
		assert.ErrorIs(t, err, service.ErrForbidden)
		f.campaigns.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestApplicationService_Accept(t *testing.T) {
	ctx := context.Background()
	campaign := &domain.Campaign{ID: 5, CompanyID: 3, Title: "Verão", Status: domain.CampaignStatusActive, Slots: 1}

	t.Run("No Slots Left", func(t *testing.T) {
		f := newApplicationFixture()
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(&domain.Application{ID: 11, CampaignID: 5, CreatorID: 7, Status: domain.ApplicationStatusPending}, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(campaign, nil)
		f.companies.On("GetMember", mock.Anything, int32(3), int32(2)).Return(&domain.CompanyMember{CompanyID: 3, UserID: 2, Role: domain.CompanyRoleOwner}, nil)
		f.apps.On("Accept", mock.Anything, mock.AnythingOfType("*domain.Application"), int32(2)).Return(repository.ErrNoFreeSlot)

		_, err := f.svc.Accept(ctx, 2, 11)
		assert.ErrorIs(t, err, service.ErrCampaignFull)
		f.email.AssertNotCalled(t, "SendApplicationDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lost Race", func(t *testing.T) {
		f := newApplicationFixture()
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(&domain.Application{ID: 11, CampaignID: 5, CreatorID: 7, Status: domain.ApplicationStatusPending}, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(campaign, nil)
		f.companies.On("GetMember", mock.Anything, int32(3), int32(2)).Return(&domain.CompanyMember{CompanyID: 3, UserID: 2, Role: domain.CompanyRoleOwner}, nil)
		f.apps.On("Accept", mock.Anything, mock.Anything, int32(2)).Return(sql.ErrNoRows)

		_, err := f.svc.Accept(ctx, 2, 11)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("Accepted And Creator Emailed", func(t *testing.T) {
		f := newApplicationFixture()
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(&domain.Application{ID: 11, CampaignID: 5, CreatorID: 7, Status: domain.ApplicationStatusPending}, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(campaign, nil)
		f.companies.On("GetMember", mock.Anything, int32(3), int32(2)).Return(&domain.CompanyMember{CompanyID: 3, UserID: 2, Role: domain.CompanyRoleMember}, nil)
		f.apps.On("Accept", mock.Anything, mock.MatchedBy(func(a *domain.Application) bool { return a.ID == 11 && a.CampaignID == 5 }), int32(2)).Return(nil)
		f.users.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{ID: 7, Name: "Ana", Email: "ana@example.com"}, nil)
		f.email.On("SendApplicationDecision", mock.Anything, "ana@example.com", "Ana", "Verão", true).Return(nil)

		app, err := f.svc.Accept(ctx, 2, 11)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusAccepted, app.Status)
		require.NotNil(t, app.DecidedBy)
		assert.Equal(t, int32(2), *app.DecidedBy)
		f.email.AssertExpectations(t)
	})

	t.Run("Outsider Is Forbidden", func(t *testing.T) {
		f := newApplicationFixture()
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(&domain.Application{ID: 11, CampaignID: 5, Status: domain.ApplicationStatusPending}, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(campaign, nil)
		f.companies.On("GetMember", mock.Anything, int32(3), int32(99)).Return(nil, sql.ErrNoRows)

		_, err := f.svc.Accept(ctx, 99, 11)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestApplicationService_Complete(t *testing.T) {
	ctx := context.Background()
	campaign := &domain.Campaign{ID: 5, CompanyID: 3, Title: "Verão", Status: domain.CampaignStatusActive, CreatorPaymentCents: 30000}
	accepted := func(proposed int64) *domain.Application {
		return &domain.Application{ID: 11, CampaignID: 5, CreatorID: 7, ProposedCents: proposed, Status: domain.ApplicationStatusAccepted}
	}
	setup := func(f *applicationFixture, app *domain.Application, c *domain.Campaign) {
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(app, nil)
		f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(c, nil)
		f.companies.On("GetMember", mock.Anything, int32(3), int32(2)).Return(&domain.CompanyMember{CompanyID: 3, UserID: 2, Role: domain.CompanyRoleOwner}, nil)
	}

	t.Run("Credits Proposed Amount And Awards Points", func(t *testing.T) {
		f := newApplicationFixture()
		setup(f, accepted(25000), campaign)
		f.apps.On("Complete", mock.Anything, int32(11), int32(2),
			mock.MatchedBy(func(c *domain.Commission) bool {
				return c.AmountCents == 25000 && c.CreatorID == 7 && c.CompanyID == 3 && c.Status == domain.CommissionStatusApproved
			}),
			mock.MatchedBy(func(tx *domain.WalletTransaction) bool {
				return tx.AmountCents == 25000 && tx.UserID == 7 && tx.Type == domain.WalletTxCommission
			})).Return(nil)
		f.community.On("AwardPoints", mock.Anything, int32(2), int32(3), int32(7), int64(100), "campaign_completed", "application:11").
			Return(&domain.CommunityMembership{Points: 100}, nil)

		app, err := f.svc.Complete(ctx, 2, 11)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusCompleted, app.Status)
		f.apps.AssertExpectations(t)
		f.community.AssertExpectations(t)
	})

	t.Run("Zero Proposal Falls Back To Campaign Payment", func(t *testing.T) {
		f := newApplicationFixture()
		setup(f, accepted(0), campaign)
		f.apps.On("Complete", mock.Anything, int32(11), int32(2),
			mock.MatchedBy(func(c *domain.Commission) bool { return c.AmountCents == 30000 }),
			mock.MatchedBy(func(tx *domain.WalletTransaction) bool { return tx.AmountCents == 30000 })).Return(nil)
		f.community.On("AwardPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrNotFound)

		_, err := f.svc.Complete(ctx, 2, 11)
		require.NoError(t, err)
		f.apps.AssertExpectations(t)
	})

	t.Run("Unpaid Campaign Skips Commission", func(t *testing.T) {
		f := newApplicationFixture()
		unpaid := *campaign
		unpaid.CreatorPaymentCents = 0
		setup(f, accepted(0), &unpaid)
		f.apps.On("Complete", mock.Anything, int32(11), int32(2), (*domain.Commission)(nil), (*domain.WalletTransaction)(nil)).Return(nil)
		f.community.On("AwardPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.CommunityMembership{}, nil)

		_, err := f.svc.Complete(ctx, 2, 11)
		require.NoError(t, err)
		f.apps.AssertExpectations(t)
	})

	t.Run("Failed Write Leaves Application Accepted", func(t *testing.T) {
		f := newApplicationFixture()
		app := accepted(25000)
		setup(f, app, campaign)
		f.apps.On("Complete", mock.Anything, int32(11), int32(2), mock.Anything, mock.Anything).Return(sql.ErrConnDone)

		_, err := f.svc.Complete(ctx, 2, 11)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Equal(t, domain.ApplicationStatusAccepted, app.Status)
		f.community.AssertNotCalled(t, "AwardPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Pending Cannot Complete", func(t *testing.T) {
		f := newApplicationFixture()
		app := accepted(25000)
		app.Status = domain.ApplicationStatusPending
		setup(f, app, campaign)

		_, err := f.svc.Complete(ctx, 2, 11)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
		f.apps.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestApplicationService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("Changed Concurrently", func(t *testing.T) {
		f := newApplicationFixture()
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(&domain.Application{ID: 11, CreatorID: 7, Status: domain.ApplicationStatusPending}, nil)
		f.apps.On("UpdateStatus", mock.Anything, int32(11), domain.ApplicationStatusPending, domain.ApplicationStatusWithdrawn, (*int32)(nil)).Return(sql.ErrNoRows)

		_, err := f.svc.Withdraw(ctx, 7, 11)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("Other Creator", func(t *testing.T) {
		f := newApplicationFixture()
		f.apps.On("GetByID", mock.Anything, int32(11)).Return(&domain.Application{ID: 11, CreatorID: 8, Status: domain.ApplicationStatusPending}, nil)

		_, err := f.svc.Withdraw(ctx, 7, 11)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
