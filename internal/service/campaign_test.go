package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

type campaignFixture struct {
	campaigns *MockCampaignRepo
	apps      *MockApplicationRepo
	companies *MockCompanyRepo
	svc       service.CampaignService
}

func newCampaignFixture() *campaignFixture {
	f := &campaignFixture{
		campaigns: new(MockCampaignRepo),
		apps:      new(MockApplicationRepo),
		companies: new(MockCompanyRepo),
	}
	f.svc = service.NewCampaignService(f.campaigns, f.apps, f.companies)
	f.companies.On("GetMember", mock.Anything, int32(3), int32(2)).Return(&domain.CompanyMember{CompanyID: 3, UserID: 2, Role: domain.CompanyRoleMember}, nil)
	f.companies.On("GetMember", mock.Anything, int32(3), mock.Anything).Return(nil, sql.ErrNoRows)
	return f
}

func (f *campaignFixture) stored(status domain.CampaignStatus) *domain.Campaign {
	c := &domain.Campaign{ID: 5, CompanyID: 3, Title: "Verão", Status: status, Slots: 3}
	f.campaigns.On("GetByID", mock.Anything, int32(5)).Return(c, nil)
	return c
}

func TestCampaignService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts As Draft", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaigns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Campaign")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Campaign).ID = 5
		}).Return(nil)

		c, err := f.svc.Create(ctx, 2, 3, &domain.Campaign{Title: " Verão ", Status: domain.CampaignStatusActive,
			Platforms: []string{" Instagram ", "tiktok", "instagram"}})
		require.NoError(t, err)
		assert.Equal(t, domain.CampaignStatusDraft, c.Status)
		assert.Equal(t, "Verão", c.Title)
		assert.Equal(t, int32(3), c.CompanyID)
		assert.Equal(t, int32(2), c.CreatedBy)
		assert.Equal(t, domain.CampaignVisibilityPublic, c.Visibility)
		assert.ElementsMatch(t, []string{"instagram", "tiktok"}, c.Platforms)
	})

	t.Run("Rejects Past Deadline", func(t *testing.T) {
		f := newCampaignFixture()
		past := time.Now().Add(-time.Hour)

		_, err := f.svc.Create(ctx, 2, 3, &domain.Campaign{Title: "Verão", Deadline: &past})
		assert.ErrorIs(t, err, service.ErrValidation)
		f.campaigns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rejects Unknown Platform", func(t *testing.T) {
		f := newCampaignFixture()

		_, err := f.svc.Create(ctx, 2, 3, &domain.Campaign{Title: "Verão", Platforms: []string{"orkut"}})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("Outsider Is Forbidden", func(t *testing.T) {
		f := newCampaignFixture()

		_, err := f.svc.Create(ctx, 99, 3, &domain.Campaign{Title: "Verão"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestCampaignService_Transitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    domain.CampaignStatus
		run     func(service.CampaignService) (*domain.Campaign, error)
		want    domain.CampaignStatus
		wantErr error
	}{
		{"Publish Draft", domain.CampaignStatusDraft, func(s service.CampaignService) (*domain.Campaign, error) { return s.Publish(ctx, 2, 5) }, domain.CampaignStatusActive, nil},
		{"Pause Active", domain.CampaignStatusActive, func(s service.CampaignService) (*domain.Campaign, error) { return s.Pause(ctx, 2, 5) }, domain.CampaignStatusPaused, nil},
		{"Resume Paused", domain.CampaignStatusPaused, func(s service.CampaignService) (*domain.Campaign, error) { return s.Resume(ctx, 2, 5) }, domain.CampaignStatusActive, nil},
		{"Close Draft", domain.CampaignStatusDraft, func(s service.CampaignService) (*domain.Campaign, error) { return s.Close(ctx, 2, 5) }, domain.CampaignStatusClosed, nil},
		{"Close Active", domain.CampaignStatusActive, func(s service.CampaignService) (*domain.Campaign, error) { return s.Close(ctx, 2, 5) }, domain.CampaignStatusClosed, nil},
		{"Publish Active", domain.CampaignStatusActive, func(s service.CampaignService) (*domain.Campaign, error) { return s.Publish(ctx, 2, 5) }, "", service.ErrInvalidTransition},
		{"Pause Draft", domain.CampaignStatusDraft, func(s service.CampaignService) (*domain.Campaign, error) { return s.Pause(ctx, 2, 5) }, "", service.ErrInvalidTransition},
		{"Resume Active", domain.CampaignStatusActive, func(s service.CampaignService) (*domain.Campaign, error) { return s.Resume(ctx, 2, 5) }, "", service.ErrInvalidTransition},
		{"Close Closed", domain.CampaignStatusClosed, func(s service.CampaignService) (*domain.Campaign, error) { return s.Close(ctx, 2, 5) }, "", service.ErrInvalidTransition},
		{"Publish Closed", domain.CampaignStatusClosed, func(s service.CampaignService) (*domain.Campaign, error) { return s.Publish(ctx, 2, 5) }, "", service.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCampaignFixture()
			f.stored(tt.from)
			f.campaigns.On("UpdateStatus", mock.Anything, int32(5), tt.want).Return(nil)

			c, err := tt.run(f.svc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, service.ErrConflict)
				f.campaigns.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Status)
			f.campaigns.AssertExpectations(t)
		})
	}

	t.Run("Publish With Passed Deadline", func(t *testing.T) {
		f := newCampaignFixture()
		c := f.stored(domain.CampaignStatusDraft)
		past := time.Now().Add(-time.Hour)
		c.Deadline = &past

		_, err := f.svc.Publish(ctx, 2, 5)
		assert.ErrorIs(t, err, service.ErrValidation)
		f.campaigns.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Outsider Is Forbidden", func(t *testing.T) {
		f := newCampaignFixture()
		f.stored(domain.CampaignStatusDraft)

		_, err := f.svc.Publish(ctx, 99, 5)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestCampaignService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Active Is Not Editable", func(t *testing.T) {
		f := newCampaignFixture()
		f.stored(domain.CampaignStatusActive)

		_, err := f.svc.Update(ctx, 2, 5, &domain.Campaign{Title: "Inverno"})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
		f.campaigns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Keeps Status And Owner", func(t *testing.T) {
		f := newCampaignFixture()
		f.stored(domain.CampaignStatusPaused)
		f.campaigns.On("Update", mock.Anything, mock.AnythingOfType("*domain.Campaign")).Return(nil)

		c, err := f.svc.Update(ctx, 2, 5, &domain.Campaign{Title: "Inverno", Status: domain.CampaignStatusActive, CompanyID: 8})
		require.NoError(t, err)
		assert.Equal(t, domain.CampaignStatusPaused, c.Status)
		assert.Equal(t, int32(3), c.CompanyID)
		assert.Equal(t, "Inverno", c.Title)
	})
}

func TestCampaignService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Draft Hidden From Outsiders", func(t *testing.T) {
		f := newCampaignFixture()
		f.stored(domain.CampaignStatusDraft)

		_, err := f.svc.Get(ctx, 99, 5)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("Active Visible To Anyone", func(t *testing.T) {
		f := newCampaignFixture()
		f.stored(domain.CampaignStatusActive)

		c, err := f.svc.Get(ctx, 99, 5)
		require.NoError(t, err)
		assert.Equal(t, int32(5), c.ID)
	})
}

func TestCampaignService_Stats(t *testing.T) {
	f := newCampaignFixture()
	f.stored(domain.CampaignStatusActive)
	f.apps.On("CountByStatus", mock.Anything, int32(5)).Return(map[domain.ApplicationStatus]int32{
		domain.ApplicationStatusPending:   4,
		domain.ApplicationStatusAccepted:  2,
		domain.ApplicationStatusCompleted: 2,
	}, nil)

	stats, err := f.svc.Stats(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(8), stats.Total)
	require.NotNil(t, stats.SlotsLeft)
	assert.Equal(t, int32(0), *stats.SlotsLeft)
}

func TestCampaignService_ListOpen_ClampsPage(t *testing.T) {
	f := newCampaignFixture()
	f.campaigns.On("ListOpen", mock.Anything, domain.CampaignFilter{Niche: "moda", Page: 1, PageSize: 100}).
		Return([]domain.Campaign{{ID: 5}}, int32(1), nil)

	items, total, err := f.svc.ListOpen(context.Background(), domain.CampaignFilter{Niche: " Moda ", PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(1), total)
}
