package service_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"ugc-marketplace-backend/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) SetActiveCompany(ctx context.Context, userID int32, companyID *int32) error {
	args := m.Called(ctx, userID, companyID)
	return args.Error(0)
}

// MockCompanyRepo
type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) CreateWithOwner(ctx context.Context, company *domain.Company, ownerID int32) error {
	args := m.Called(ctx, company, ownerID)
	return args.Error(0)
}
func (m *MockCompanyRepo) GetByID(ctx context.Context, id int32) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) GetByCNPJ(ctx context.Context, cnpj string) (*domain.Company, error) {
	args := m.Called(ctx, cnpj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) Update(ctx context.Context, company *domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}
func (m *MockCompanyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}
func (m *MockCompanyRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) ListWithInstagram(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) AddMember(ctx context.Context, member *domain.CompanyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockCompanyRepo) GetMember(ctx context.Context, companyID, userID int32) (*domain.CompanyMember, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyMember), args.Error(1)
}
func (m *MockCompanyRepo) ListMembers(ctx context.Context, companyID int32) ([]domain.CompanyMember, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.CompanyMember), args.Error(1)
}

// MockCampaignRepo
type MockCampaignRepo struct {
	mock.Mock
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCampaignRepo) GetByID(ctx context.Context, id int32) (*domain.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}
func (m *MockCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCampaignRepo) UpdateStatus(ctx context.Context, id int32, status domain.CampaignStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockCampaignRepo) ListByCompany(ctx context.Context, companyID int32, status string) ([]domain.Campaign, error) {
	args := m.Called(ctx, companyID, status)
	return args.Get(0).([]domain.Campaign), args.Error(1)
}
func (m *MockCampaignRepo) ListOpen(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Campaign), args.Get(1).(int32), args.Error(2)
}

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) GetByCampaignAndCreator(ctx context.Context, campaignID, creatorID int32) (*domain.Application, error) {
	args := m.Called(ctx, campaignID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.ApplicationStatus, decidedBy *int32) error {
	args := m.Called(ctx, id, from, to, decidedBy)
	return args.Error(0)
}
func (m *MockApplicationRepo) Accept(ctx context.Context, app *domain.Application, decidedBy int32) error {
	args := m.Called(ctx, app, decidedBy)
	return args.Error(0)
}
func (m *MockApplicationRepo) Complete(ctx context.Context, id, decidedBy int32, commission *domain.Commission, credit *domain.WalletTransaction) error {
	args := m.Called(ctx, id, decidedBy, commission, credit)
	return args.Error(0)
}
func (m *MockApplicationRepo) ListByCreator(ctx context.Context, creatorID int32, status string) ([]domain.Application, error) {
	args := m.Called(ctx, creatorID, status)
	return args.Get(0).([]domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) ListByCampaign(ctx context.Context, campaignID int32, status string) ([]domain.Application, error) {
	args := m.Called(ctx, campaignID, status)
	return args.Get(0).([]domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) CountByStatus(ctx context.Context, campaignID int32) (map[domain.ApplicationStatus]int32, error) {
	args := m.Called(ctx, campaignID)
	return args.Get(0).(map[domain.ApplicationStatus]int32), args.Error(1)
}
func (m *MockApplicationRepo) CountPendingByCompany(ctx context.Context, companyID int32) (int32, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int32), args.Error(1)
}

// MockInviteRepo
type MockInviteRepo struct {
	mock.Mock
}

func (m *MockInviteRepo) Create(ctx context.Context, invite *domain.CampaignInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}
func (m *MockInviteRepo) GetByID(ctx context.Context, id int32) (*domain.CampaignInvite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignInvite), args.Error(1)
}
func (m *MockInviteRepo) GetPending(ctx context.Context, campaignID, creatorID int32) (*domain.CampaignInvite, error) {
	args := m.Called(ctx, campaignID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignInvite), args.Error(1)
}
func (m *MockInviteRepo) UpdateStatus(ctx context.Context, id int32, status domain.InviteStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockInviteRepo) Accept(ctx context.Context, inviteID int32, app *domain.Application) error {
	args := m.Called(ctx, inviteID, app)
	return args.Error(0)
}
func (m *MockInviteRepo) ListPendingByCreator(ctx context.Context, creatorID int32, now time.Time) ([]domain.CampaignInvite, error) {
	args := m.Called(ctx, creatorID, now)
	return args.Get(0).([]domain.CampaignInvite), args.Error(1)
}
func (m *MockInviteRepo) ListByCampaign(ctx context.Context, campaignID int32) ([]domain.CampaignInvite, error) {
	args := m.Called(ctx, campaignID)
	return args.Get(0).([]domain.CampaignInvite), args.Error(1)
}
func (m *MockInviteRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockCommunityRepo
type MockCommunityRepo struct {
	mock.Mock
}

func (m *MockCommunityRepo) ListTiers(ctx context.Context, companyID int32) ([]domain.Tier, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.Tier), args.Error(1)
}
func (m *MockCommunityRepo) ReplaceTiers(ctx context.Context, companyID int32, tiers []domain.Tier) ([]domain.Tier, error) {
	args := m.Called(ctx, companyID, tiers)
	return args.Get(0).([]domain.Tier), args.Error(1)
}
func (m *MockCommunityRepo) CreateMembership(ctx context.Context, mem *domain.CommunityMembership) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}
func (m *MockCommunityRepo) GetMembership(ctx context.Context, companyID, creatorID int32) (*domain.CommunityMembership, error) {
	args := m.Called(ctx, companyID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommunityMembership), args.Error(1)
}
func (m *MockCommunityRepo) UpdateMembership(ctx context.Context, mem *domain.CommunityMembership) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}
func (m *MockCommunityRepo) ListMembers(ctx context.Context, companyID int32) ([]domain.CommunityMembership, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.CommunityMembership), args.Error(1)
}
func (m *MockCommunityRepo) ListByCreator(ctx context.Context, creatorID int32) ([]domain.CommunityMembership, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]domain.CommunityMembership), args.Error(1)
}
func (m *MockCommunityRepo) AddPoints(ctx context.Context, event *domain.PointsEvent) (int64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCommunityRepo) SetTier(ctx context.Context, membershipID int32, tierID *int32) error {
	args := m.Called(ctx, membershipID, tierID)
	return args.Error(0)
}
func (m *MockCommunityRepo) Leaderboard(ctx context.Context, companyID int32, limit int32) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, companyID, limit)
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}
func (m *MockCommunityRepo) ExpireMemberships(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockWalletRepo
type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) GetCommission(ctx context.Context, id int32) (*domain.Commission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Commission), args.Error(1)
}
func (m *MockWalletRepo) ListCommissions(ctx context.Context, creatorID int32, status string) ([]domain.Commission, error) {
	args := m.Called(ctx, creatorID, status)
	return args.Get(0).([]domain.Commission), args.Error(1)
}
func (m *MockWalletRepo) UpdateCommissionStatus(ctx context.Context, id int32, status domain.CommissionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockWalletRepo) Withdraw(ctx context.Context, tx *domain.WalletTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockWalletRepo) GetBalance(ctx context.Context, userID int32) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockWalletRepo) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockWalletRepo) GetSummary(ctx context.Context, userID int32) (*domain.WalletSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletSummary), args.Error(1)
}

// MockInboxRepo
type MockInboxRepo struct {
	mock.Mock
}

func (m *MockInboxRepo) UpsertConversation(ctx context.Context, conv *domain.InstagramConversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}
func (m *MockInboxRepo) GetConversation(ctx context.Context, id int32) (*domain.InstagramConversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstagramConversation), args.Error(1)
}
func (m *MockInboxRepo) ListConversations(ctx context.Context, companyID int32) ([]domain.InstagramConversation, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.InstagramConversation), args.Error(1)
}
func (m *MockInboxRepo) InsertMessage(ctx context.Context, msg *domain.InstagramMessage) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}
func (m *MockInboxRepo) ListMessages(ctx context.Context, conversationID int32) ([]domain.InstagramMessage, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]domain.InstagramMessage), args.Error(1)
}
func (m *MockInboxRepo) MarkRead(ctx context.Context, conversationID int32) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}
func (m *MockInboxRepo) TouchConversation(ctx context.Context, conversationID int32, lastMessage string, at time.Time, incrementUnread bool) error {
	args := m.Called(ctx, conversationID, lastMessage, at, incrementUnread)
	return args.Error(0)
}

// MockAnalyticsRepo
type MockAnalyticsRepo struct {
	mock.Mock
}

func (m *MockAnalyticsRepo) CreateSnapshot(ctx context.Context, s *domain.AnalyticsSnapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockAnalyticsRepo) History(ctx context.Context, provider domain.SocialProvider, handle string, limit int32) ([]domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, provider, handle, limit)
	return args.Get(0).([]domain.AnalyticsSnapshot), args.Error(1)
}
func (m *MockAnalyticsRepo) SearchCreators(ctx context.Context, filter domain.CreatorSearchFilter) ([]domain.CreatorSearchResult, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CreatorSearchResult), args.Get(1).(int32), args.Error(2)
}
func (m *MockAnalyticsRepo) DiscoveryStats(ctx context.Context) (*domain.DiscoveryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscoveryStats), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendInvite(ctx context.Context, to, toName, companyName, campaignTitle string) error {
	args := m.Called(ctx, to, toName, companyName, campaignTitle)
	return args.Error(0)
}
func (m *MockEmailService) SendApplicationDecision(ctx context.Context, to, toName, campaignTitle string, accepted bool) error {
	args := m.Called(ctx, to, toName, campaignTitle, accepted)
	return args.Error(0)
}
func (m *MockEmailService) SendTierUpgrade(ctx context.Context, to, toName, companyName, tierName string) error {
	args := m.Called(ctx, to, toName, companyName, tierName)
	return args.Error(0)
}
func (m *MockEmailService) SendApplicationDigest(ctx context.Context, to, toName, companyName string, pending int32) error {
	args := m.Called(ctx, to, toName, companyName, pending)
	return args.Error(0)
}

// MockProfileFetcher
type MockProfileFetcher struct {
	mock.Mock
}

func (m *MockProfileFetcher) FetchProfile(ctx context.Context, provider domain.SocialProvider, handle string, company *domain.Company) (*domain.ProviderProfile, error) {
	args := m.Called(ctx, provider, handle, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderProfile), args.Error(1)
}

// MockCNPJProvider
type MockCNPJProvider struct {
	mock.Mock
}

func (m *MockCNPJProvider) LookupCNPJ(ctx context.Context, cnpj string) (*domain.CNPJInfo, error) {
	args := m.Called(ctx, cnpj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CNPJInfo), args.Error(1)
}

// MockCEPProvider
type MockCEPProvider struct {
	mock.Mock
}

func (m *MockCEPProvider) LookupCEP(ctx context.Context, cep string) (*domain.Address, error) {
	args := m.Called(ctx, cep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(userID int32, env domain.Envelope) int {
	args := m.Called(userID, env)
	return args.Int(0)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockStorage) SaveFile(key string, reader io.Reader) error {
	args := m.Called(key, reader)
	return args.Error(0)
}
func (m *MockStorage) ReadFile(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockStorage) VerifyUploadToken(key, token string) bool {
	args := m.Called(key, token)
	return args.Bool(0)
}
