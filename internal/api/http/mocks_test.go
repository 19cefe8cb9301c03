package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, email, password, name string, role domain.UserRole) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password, name, role)
	u, _ := args.Get(0).(*domain.User)
	t, _ := args.Get(1).(*service.TokenPair)
	return u, t, args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	t, _ := args.Get(1).(*service.TokenPair)
	return u, t, args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (*service.TokenPair, error) {
	args := m.Called(ctx, refresh)
	t, _ := args.Get(0).(*service.TokenPair)
	return t, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID int32) error {
	return m.Called(ctx, userID).Error(0)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID int32, in domain.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, in)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) LinkSocialAccount(ctx context.Context, userID int32, provider domain.SocialProvider, handle string) (*domain.SocialAccount, error) {
	args := m.Called(ctx, userID, provider, handle)
	a, _ := args.Get(0).(*domain.SocialAccount)
	return a, args.Error(1)
}

func (m *MockUserService) UnlinkSocialAccount(ctx context.Context, userID, accountID int32) error {
	return m.Called(ctx, userID, accountID).Error(0)
}

// Mocks that embed the service interface implement only what the handlers under test reach.
type MockCompanyService struct {
	mock.Mock
	service.CompanyService
}

func (m *MockCompanyService) ActiveCompanyID(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

type MockCampaignService struct {
	mock.Mock
	service.CampaignService
}

func (m *MockCampaignService) Get(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	args := m.Called(ctx, userID, campaignID)
	c, _ := args.Get(0).(*domain.Campaign)
	return c, args.Error(1)
}

func (m *MockCampaignService) Publish(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error) {
	args := m.Called(ctx, userID, campaignID)
	c, _ := args.Get(0).(*domain.Campaign)
	return c, args.Error(1)
}

type MockApplicationService struct {
	mock.Mock
	service.ApplicationService
}

func (m *MockApplicationService) Accept(ctx context.Context, userID, applicationID int32) (*domain.Application, error) {
	args := m.Called(ctx, userID, applicationID)
	a, _ := args.Get(0).(*domain.Application)
	return a, args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
	service.AnalyticsService
}

func (m *MockAnalyticsService) AnalyzeInstagram(ctx context.Context, companyID int32, handle string) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, companyID, handle)
	s, _ := args.Get(0).(*domain.AnalyticsSnapshot)
	return s, args.Error(1)
}

type MockEnrichmentService struct {
	mock.Mock
	service.EnrichmentService
}

func (m *MockEnrichmentService) LookupCEP(ctx context.Context, cep string) (*domain.Address, error) {
	args := m.Called(ctx, cep)
	a, _ := args.Get(0).(*domain.Address)
	return a, args.Error(1)
}

type MockInboxService struct {
	mock.Mock
	service.InboxService
}

func (m *MockInboxService) VerifyWebhook(mode, token, challenge string) (string, error) {
	args := m.Called(mode, token, challenge)
	return args.String(0), args.Error(1)
}

func (m *MockInboxService) HandleWebhook(ctx context.Context, payload *service.WebhookPayload) (int, error) {
	args := m.Called(ctx, payload)
	return args.Int(0), args.Error(1)
}
